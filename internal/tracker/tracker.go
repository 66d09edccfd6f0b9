// Package tracker watches the scroll position of the page flow. On every
// scroll signal it decides whether the next page should be requested and
// which page counts as the current one.
package tracker

import (
	"github.com/csheth/studyreader/internal/render"
)

// Geometry describes the visible window over the flow, in rows.
type Geometry struct {
	Top    int
	Height int
}

// Outcome is the result of one scroll signal. Lookahead is the page to
// request, or 0. PersistErr is set when the current page changed but could
// not be saved.
type Outcome struct {
	Lookahead  int
	Current    int
	Changed    bool
	PersistErr error
}

// PersistFunc saves the current page for resume.
type PersistFunc func(page int) error

type Tracker struct {
	lookahead int
	current   int
	persist   PersistFunc
}

// New builds a tracker that asks for the next page once the bottom of the
// content is within lookaheadRows of the window's bottom edge.
func New(lookaheadRows int, persist PersistFunc) *Tracker {
	if lookaheadRows < 0 {
		lookaheadRows = 0
	}
	return &Tracker{lookahead: lookaheadRows, persist: persist}
}

func (t *Tracker) Current() int { return t.current }

// Reset sets the tracked page without persisting it, for a new document or
// a jump.
func (t *Tracker) Reset(page int) {
	t.current = page
}

// OnScroll evaluates both rules against the flow. The look-ahead decision
// is made before current-page detection, and a failed save is reported in
// the outcome rather than aborting the call.
func (t *Tracker) OnScroll(flow *render.Flow, numPages int, g Geometry) Outcome {
	out := Outcome{Current: t.current}
	if flow == nil || flow.Len() == 0 {
		return out
	}

	if flow.ContentHeight()-(g.Top+g.Height) <= t.lookahead {
		if next := flow.Last() + 1; next <= numPages {
			out.Lookahead = next
		}
	}

	page, ok := firstFullyVisible(flow, g)
	if !ok || page == t.current {
		return out
	}
	t.current = page
	out.Current = page
	out.Changed = true
	if t.persist != nil {
		out.PersistErr = t.persist(page)
	}
	return out
}

// firstFullyVisible returns the first page whose rows all lie inside the
// window. Partially visible pages never count.
func firstFullyVisible(flow *render.Flow, g Geometry) (int, bool) {
	bottom := g.Top + g.Height
	for _, p := range flow.Pages() {
		top, end, ok := flow.Bounds(p.Number)
		if !ok {
			continue
		}
		if top >= g.Top && end <= bottom {
			return p.Number, true
		}
		if top >= bottom {
			break
		}
	}
	return 0, false
}
