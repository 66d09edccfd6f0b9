package render

// Mailbox is a single-slot holder for the next page to render. A Put
// replaces whatever was waiting.
type Mailbox struct {
	page int
	full bool
}

// Put stores n and reports whether an earlier request was overwritten.
func (m *Mailbox) Put(n int) bool {
	replaced := m.full
	m.page, m.full = n, true
	return replaced
}

func (m *Mailbox) Take() (int, bool) {
	n, ok := m.page, m.full
	m.page, m.full = 0, false
	return n, ok
}

func (m *Mailbox) Peek() (int, bool) {
	return m.page, m.full
}

// State is the scheduler's render bookkeeping.
type State struct {
	RequestedPage int
	Rendering     bool
	Pending       Mailbox
	Scale         float64
}

// Job describes one page render. Generation ties the job to the view it was
// issued for; completions from an older generation are dropped.
type Job struct {
	Page       int
	Scale      float64
	Generation int
}

// Result is what the caller reports back once a Job has run.
type Result struct {
	Job  Job
	Page *Page
	Err  error
}

// Scheduler decides which page renders next. It never renders itself: each
// call that starts work hands back a Job, and the caller must pass the
// outcome to Complete before another Job is issued.
type Scheduler struct {
	State State

	flow           *Flow
	numPages       int
	viewportHeight int
	generation     int
}

func NewScheduler(numPages int, scale float64) *Scheduler {
	return &Scheduler{
		State:    State{Scale: scale},
		flow:     NewFlow(),
		numPages: numPages,
	}
}

func (s *Scheduler) Flow() *Flow         { return s.flow }
func (s *Scheduler) NumPages() int       { return s.numPages }
func (s *Scheduler) Generation() int     { return s.generation }
func (s *Scheduler) Busy() bool          { return s.State.Rendering }
func (s *Scheduler) ViewportHeight() int { return s.viewportHeight }

// SetViewportHeight records the visible height in rows; look-ahead stops once
// the materialized content is taller than twice this.
func (s *Scheduler) SetViewportHeight(rows int) {
	s.viewportHeight = rows
}

// Request asks for page n. It returns a Job to run when nothing is in
// flight. While a render is in flight n replaces any pending request and no
// Job is returned. Pages already materialized or out of range are ignored.
func (s *Scheduler) Request(n int) (Job, bool) {
	if n < 1 || n > s.numPages || s.flow.Has(n) {
		return Job{}, false
	}
	s.State.RequestedPage = n
	if s.State.Rendering {
		s.State.Pending.Put(n)
		return Job{}, false
	}
	return s.start(n), true
}

// Complete records the outcome of the in-flight Job and returns the next Job,
// if any. The in-flight flag is always cleared, even when the render failed
// or the result is stale, so a pending request is never stranded. A pending
// request wins over look-ahead, and look-ahead only follows a successful
// render.
func (s *Scheduler) Complete(res Result) (Job, bool) {
	s.State.Rendering = false
	current := res.Job.Generation == s.generation
	if current && res.Err == nil && res.Page != nil {
		s.flow.Insert(res.Page)
	}
	for {
		n, ok := s.State.Pending.Take()
		if !ok {
			break
		}
		if n >= 1 && n <= s.numPages && !s.flow.Has(n) {
			return s.start(n), true
		}
	}
	if !current || res.Err != nil {
		return Job{}, false
	}
	next := res.Job.Page + 1
	if next > s.numPages || s.flow.Has(next) {
		return Job{}, false
	}
	if s.flow.ContentHeight() > 2*s.viewportHeight {
		return Job{}, false
	}
	return s.start(next), true
}

// Reset discards every materialized page and any pending request, for a new
// document, a new scale or a jump. A render still in flight keeps the
// in-flight flag set; its completion will be stale and dropped.
func (s *Scheduler) Reset(numPages int, scale float64) {
	s.generation++
	s.flow.Clear()
	s.numPages = numPages
	s.State.Scale = scale
	s.State.RequestedPage = 0
	s.State.Pending.Take()
}

func (s *Scheduler) start(n int) Job {
	s.State.Rendering = true
	return Job{Page: n, Scale: s.State.Scale, Generation: s.generation}
}
