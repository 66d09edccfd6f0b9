// Package session composes one reading session: the open document, the
// render scheduler and scroll tracker over it, the request gate, the card
// ledgers and durable storage. Every method is meant to be called from a
// single goroutine (the UI update loop); the only blocking work, rendering
// and completion calls, is handed back to the caller as functions to run
// elsewhere.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/internal/document"
	"github.com/csheth/studyreader/internal/extract"
	"github.com/csheth/studyreader/internal/gate"
	"github.com/csheth/studyreader/internal/langdetect"
	"github.com/csheth/studyreader/internal/llm"
	"github.com/csheth/studyreader/internal/render"
	"github.com/csheth/studyreader/internal/storage"
	"github.com/csheth/studyreader/internal/tracker"
	"github.com/csheth/studyreader/pkg/logger"
)

var (
	// ErrThrottled reports a query dropped by the request gate. Callers
	// should ignore it silently.
	ErrThrottled      = errors.New("session: identical request within cooldown")
	ErrNoDocument     = errors.New("session: no document open")
	ErrPageOutOfRange = errors.New("session: page out of range")
	ErrEmptySelection = errors.New("session: empty selection")
)

type Session struct {
	cfg      *config.Config
	store    storage.Store
	client   llm.Client
	prompts  llm.Prompts
	logger   *logger.Logger
	renderer render.Renderer
	now      func() time.Time

	doc      document.Document
	retiring []document.Document
	file     string
	sched    *render.Scheduler
	tracker  *tracker.Tracker
	gate     *gate.Gate

	highlights map[int][]render.Highlight

	Flashcards *collection.Store
	Language   *collection.Store

	apiKey         string
	model          string
	targetLanguage string
}

// New builds a session with no document. Ledgers, the selected model and
// the target language are loaded from store.
func New(cfg *config.Config, store storage.Store, client llm.Client, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Discard()
	}
	s := &Session{
		cfg:    cfg,
		store:  store,
		client: client,
		prompts: llm.Prompts{
			Flashcard: cfg.Prompts.Flashcard,
			Explain:   cfg.Prompts.Explain,
			Language:  cfg.Prompts.Language,
		},
		logger: log,
		renderer: render.Renderer{
			Grid:             render.Grid{CellWidth: cfg.Render.CellWidth, CellHeight: cfg.Render.CellHeight},
			DevicePixelRatio: cfg.Render.DevicePixelRatio,
		},
		now:        time.Now,
		sched:      render.NewScheduler(0, cfg.Render.DefaultScale),
		gate:       gate.New(cfg.Gate.Cooldown),
		highlights: map[int][]render.Highlight{},
		Flashcards: collection.Open(store, collection.KindFlashcard),
		Language:   collection.Open(store, collection.KindLanguage),
	}
	s.tracker = tracker.New(cfg.LookaheadRows(), s.persistPage)
	s.model = storage.GetString(store, storage.KeySelectedModel, cfg.Model)
	s.targetLanguage = storage.GetString(store, storage.KeyTargetLanguage, cfg.TargetLanguage)
	return s
}

// SetRaster asks the renderer to paint pixel surfaces for backends that
// support them.
func (s *Session) SetRaster(on bool) { s.renderer.Raster = on }

func (s *Session) Document() document.Document { return s.doc }
func (s *Session) File() string                { return s.file }
func (s *Session) Flow() *render.Flow          { return s.sched.Flow() }
func (s *Session) NumPages() int               { return s.sched.NumPages() }
func (s *Session) Scale() float64              { return s.sched.State.Scale }
func (s *Session) CurrentPage() int            { return s.tracker.Current() }
func (s *Session) Rendering() bool             { return s.sched.Busy() }
func (s *Session) Model() string               { return s.model }
func (s *Session) TargetLanguage() string      { return s.targetLanguage }
func (s *Session) RecentFiles() []string       { return storage.RecentFiles(s.store) }

// Load decodes data and replaces the open document. A decode failure leaves
// the session as it was. The returned job, if any, starts the flow at the
// resume page.
func (s *Session) Load(name string, data []byte) (render.Job, bool, error) {
	doc, err := document.Open(name, data)
	if err != nil {
		return render.Job{}, false, err
	}
	job, ok := s.Attach(name, doc)
	return job, ok, nil
}

// Attach makes an already decoded doc the open document. The previous one is
// closed, or retired until its in-flight render completes.
func (s *Session) Attach(name string, doc document.Document) (render.Job, bool) {
	if s.doc != nil {
		if s.sched.Busy() {
			s.retiring = append(s.retiring, s.doc)
		} else {
			s.closeDoc(s.doc)
		}
	}
	s.doc = doc
	s.file = name

	scale := storage.GetFloat(s.store, storage.ScaleKey(name), s.cfg.Render.DefaultScale)
	scale = render.ClampScale(scale, s.cfg.Render.MinScale, s.cfg.Render.MaxScale)
	s.sched.Reset(doc.NumPages(), scale)

	s.highlights = map[int][]render.Highlight{}
	var stored map[int][]render.Highlight
	if storage.GetJSON(s.store, storage.HighlightsKey(name), &stored) {
		s.highlights = stored
	}

	start := ResumePage(storage.GetInt(s.store, storage.LastPageKey(name), 1), doc.NumPages())
	s.tracker.Reset(start)

	if _, err := storage.TouchRecent(s.store, name); err != nil {
		s.logger.Warn("Failed to record recent file %s: %v", name, err)
	}
	s.logger.Info("Opened %s (%s, %d pages) at page %d, scale %.2f", name, doc.Kind(), doc.NumPages(), start, scale)

	return s.sched.Request(start)
}

// ResumePage is where reading restarts: two pages before the last page seen,
// never before the first page or past the last one.
func ResumePage(last, numPages int) int {
	page := last - 2
	if page < 1 {
		page = 1
	}
	if numPages > 0 && page > numPages {
		page = numPages
	}
	return page
}

// Render returns the blocking work for job. The document is captured so a
// later Load cannot swap it out from under the render.
func (s *Session) Render(job render.Job) func() render.Result {
	doc, renderer := s.doc, s.renderer
	return func() render.Result {
		if doc == nil {
			return render.Result{Job: job, Err: &render.RenderError{Page: job.Page, Err: ErrNoDocument}}
		}
		page, err := renderer.Render(doc, job.Page, job.Scale)
		return render.Result{Job: job, Page: page, Err: err}
	}
}

// Complete feeds a finished render back to the scheduler and returns the
// next job to start, if any.
func (s *Session) Complete(res render.Result) (render.Job, bool) {
	for _, d := range s.retiring {
		s.closeDoc(d)
	}
	s.retiring = nil

	if res.Err != nil {
		s.logger.Warn("Render failed: %v", res.Err)
	} else if res.Page != nil && res.Job.Generation == s.sched.Generation() {
		for _, h := range s.highlights[res.Page.Number] {
			res.Page.AddHighlight(h)
		}
	}
	return s.sched.Complete(res)
}

// SetViewportHeight tells the scheduler how many rows one screen holds.
func (s *Session) SetViewportHeight(rows int) { s.sched.SetViewportHeight(rows) }

// Scroll handles one scroll signal and returns a look-ahead job, if any.
func (s *Session) Scroll(g tracker.Geometry) (render.Job, bool) {
	out := s.tracker.OnScroll(s.sched.Flow(), s.sched.NumPages(), g)
	if out.PersistErr != nil {
		s.logger.Warn("Failed to save reading position: %v", out.PersistErr)
	}
	if out.Lookahead == 0 {
		return render.Job{}, false
	}
	return s.sched.Request(out.Lookahead)
}

// Zoom moves the scale by steps increments, persists it and rebuilds the
// flow at the current page. Nothing happens when the clamped scale does not
// change.
func (s *Session) Zoom(steps int) (render.Job, bool) {
	if s.doc == nil {
		return render.Job{}, false
	}
	next := render.ClampScale(s.Scale()+float64(steps)*s.cfg.Render.ScaleStep, s.cfg.Render.MinScale, s.cfg.Render.MaxScale)
	if next == s.Scale() {
		return render.Job{}, false
	}
	if err := storage.SetFloat(s.store, storage.ScaleKey(s.file), next); err != nil {
		s.logger.Warn("Failed to save scale: %v", err)
	}
	page := s.CurrentPage()
	if page < 1 {
		page = 1
	}
	s.sched.Reset(s.doc.NumPages(), next)
	return s.sched.Request(page)
}

// JumpTo discards every materialized page and restarts the flow at page.
func (s *Session) JumpTo(page int) (render.Job, bool, error) {
	if s.doc == nil {
		return render.Job{}, false, ErrNoDocument
	}
	if page < 1 || page > s.doc.NumPages() {
		return render.Job{}, false, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, s.doc.NumPages())
	}
	s.sched.Reset(s.doc.NumPages(), s.Scale())
	s.tracker.Reset(page)
	if err := s.persistPage(page); err != nil {
		s.logger.Warn("Failed to save reading position: %v", err)
	}
	job, ok := s.sched.Request(page)
	return job, ok, nil
}

// PositionAt maps a cell of the flow to a rune position in the run
// sequence. Columns left of a line snap to its start and columns past its
// end snap to its end.
func (s *Session) PositionAt(row, col int) (extract.Position, bool) {
	flow := s.sched.Flow()
	page, pageRow, ok := flow.At(row)
	if !ok {
		return extract.Position{}, false
	}
	line, ok := page.Layer.LineAt(pageRow)
	if !ok {
		return extract.Position{}, false
	}
	run, ok := flow.RunIndex(page.Number, line.Item)
	if !ok {
		return extract.Position{}, false
	}
	offset := col - line.Col
	if offset < 0 {
		offset = 0
	}
	if n := len([]rune(line.Text)); offset > n {
		offset = n
	}
	return extract.Position{Run: run, Offset: offset}, true
}

// Extract builds the context for sel. Language cards use the fixed window
// with the word emphasized; the other modes use the enclosing sentence. The
// selection is kept as a highlight.
func (s *Session) Extract(mode llm.Mode, sel extract.Selection) (extract.Context, error) {
	runs := s.sched.Flow().Runs()
	var ctx extract.Context
	if mode == llm.ModeLanguage {
		ctx = extract.FixedRadius(runs, sel)
	} else {
		ctx = extract.SentenceWindow(runs, sel)
	}
	if ctx.Anchor == "" {
		return ctx, ErrEmptySelection
	}
	s.highlight(runs, sel)
	return ctx, nil
}

func (s *Session) highlight(runs []extract.Run, sel extract.Selection) {
	changed := false
	for i := sel.Start.Run; i <= sel.End.Run && i < len(runs); i++ {
		h := render.Highlight{Item: runs[i].Index, End: len([]rune(runs[i].Text))}
		if i == sel.Start.Run {
			h.Start = sel.Start.Offset
		}
		if i == sel.End.Run {
			h.End = sel.End.Offset
		}
		page, ok := s.sched.Flow().Page(runs[i].Page)
		if !ok || !page.AddHighlight(h) {
			continue
		}
		s.highlights[page.Number] = append(s.highlights[page.Number], h)
		changed = true
	}
	if !changed || s.file == "" {
		return
	}
	if err := storage.SetJSON(s.store, storage.HighlightsKey(s.file), s.highlights); err != nil {
		s.logger.Warn("Failed to save highlights: %v", err)
	}
}

// Prepare builds the completion request for a context. An identical prompt
// inside the gate's cooldown yields ErrThrottled.
func (s *Session) Prepare(mode llm.Mode, ctx extract.Context) (llm.Request, error) {
	in := llm.PromptInput{
		Phrase:         ctx.Phrase,
		Word:           ctx.Anchor,
		TargetLanguage: s.targetLanguage,
	}
	if mode == llm.ModeLanguage {
		in.SourceLanguage = langdetect.Detect(ctx.Phrase)
	}
	prompt, err := s.prompts.Build(mode, in)
	if err != nil {
		return llm.Request{}, err
	}
	if !s.gate.Admit(prompt, s.now()) {
		return llm.Request{}, ErrThrottled
	}
	return llm.NewRequest(mode, s.model, prompt, s.APIKey()), nil
}

// Generate returns the blocking completion call for req.
func (s *Session) Generate(req llm.Request) func(context.Context) (llm.Response, error) {
	client := s.client
	return func(ctx context.Context) (llm.Response, error) {
		return client.Generate(ctx, req)
	}
}

// Delivery is what a finished completion added to the session.
type Delivery struct {
	RequestID   string
	Mode        llm.Mode
	Cards       int
	Explanation string
}

// Deliver records the outcome of req. On success the key that worked is
// remembered and any cards join the generated list of their kind. Failures
// leave no partial cards behind.
func (s *Session) Deliver(req llm.Request, resp llm.Response, err error) (Delivery, error) {
	d := Delivery{RequestID: req.ID, Mode: req.Mode}
	if err != nil {
		s.logger.Warn("Request %s (%s) failed: %v", req.ID, req.Mode, err)
		return d, err
	}
	if req.APIKey != "" {
		if err := s.store.Set(storage.KeyLastWorkingAPIKey, req.APIKey); err != nil {
			s.logger.Warn("Failed to save API key: %v", err)
		}
	}
	cards := collection.CardsFromResponse(resp)
	d.Cards = s.Flashcards.AddGenerated(cards...) + s.Language.AddGenerated(cards...)
	d.Explanation = resp.Explanation
	s.logger.Debug("Request %s (%s) delivered %d cards", req.ID, req.Mode, d.Cards)
	return d, nil
}

// Ledger returns the card store for kind.
func (s *Session) Ledger(kind collection.Kind) *collection.Store {
	if kind == collection.KindLanguage {
		return s.Language
	}
	return s.Flashcards
}

// APIKey is the key sent with requests: one set for this session, else the
// last key that worked. Empty means the provider's environment variable.
func (s *Session) APIKey() string {
	if s.apiKey != "" {
		return s.apiKey
	}
	return storage.GetString(s.store, storage.KeyLastWorkingAPIKey, "")
}

func (s *Session) SetAPIKey(key string) { s.apiKey = key }

func (s *Session) SetModel(model string) error {
	if model == "" {
		return errors.New("model name is empty")
	}
	s.model = model
	return s.store.Set(storage.KeySelectedModel, model)
}

func (s *Session) SetTargetLanguage(lang string) error {
	if lang == "" {
		return errors.New("target language is empty")
	}
	s.targetLanguage = lang
	return s.store.Set(storage.KeyTargetLanguage, lang)
}

// Close releases the open document. The store belongs to the caller.
func (s *Session) Close() error {
	for _, d := range s.retiring {
		s.closeDoc(d)
	}
	s.retiring = nil
	if s.doc == nil {
		return nil
	}
	err := s.doc.Close()
	s.doc = nil
	return err
}

func (s *Session) persistPage(page int) error {
	if s.file == "" {
		return nil
	}
	return storage.SetInt(s.store, storage.LastPageKey(s.file), page)
}

func (s *Session) closeDoc(d document.Document) {
	if err := d.Close(); err != nil {
		s.logger.Debug("Closing %s: %v", d.Name(), err)
	}
}
