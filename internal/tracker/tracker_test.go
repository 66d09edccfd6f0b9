package tracker

import (
	"errors"
	"testing"

	"github.com/csheth/studyreader/internal/render"
)

// flowOf stacks pages of the given heights: page 1 first.
func flowOf(heights ...int) *render.Flow {
	f := render.NewFlow()
	for i, h := range heights {
		f.Insert(&render.Page{Number: i + 1, Layer: render.TextLayer{Rows: h}})
	}
	return f
}

func TestOnScrollDetectsFirstFullyVisiblePage(t *testing.T) {
	var saved []int
	tr := New(5, func(page int) error {
		saved = append(saved, page)
		return nil
	})
	// Page 1 occupies rows 0-9, page 2 rows 11-20, page 3 rows 22-31.
	flow := flowOf(10, 10, 10)

	out := tr.OnScroll(flow, 10, Geometry{Top: 0, Height: 12})
	if !out.Changed || out.Current != 1 {
		t.Fatalf("expected page 1, got %+v", out)
	}
	out = tr.OnScroll(flow, 10, Geometry{Top: 5, Height: 16})
	if !out.Changed || out.Current != 2 {
		t.Fatalf("expected page 2, got %+v", out)
	}
	out = tr.OnScroll(flow, 10, Geometry{Top: 6, Height: 16})
	if out.Changed {
		t.Fatalf("page did not change, got %+v", out)
	}
	if len(saved) != 2 || saved[0] != 1 || saved[1] != 2 {
		t.Fatalf("unexpected persisted pages %v", saved)
	}
}

func TestOnScrollIgnoresPartialOverlaps(t *testing.T) {
	tr := New(0, func(int) error {
		t.Fatal("nothing should be persisted")
		return nil
	})
	tr.Reset(1)
	// Pages taller than the window are never fully inside it.
	flow := flowOf(30, 30)
	for top := 0; top < 60; top += 3 {
		out := tr.OnScroll(flow, 2, Geometry{Top: top, Height: 20})
		if out.Changed || out.Current != 1 {
			t.Fatalf("top=%d: current page must not move on partial overlap, got %+v", top, out)
		}
	}
}

func TestOnScrollRequestsNextPageNearBottom(t *testing.T) {
	tr := New(5, nil)
	flow := flowOf(20, 20)

	if out := tr.OnScroll(flow, 4, Geometry{Top: 0, Height: 10}); out.Lookahead != 0 {
		t.Fatalf("far from the bottom, got %+v", out)
	}
	if out := tr.OnScroll(flow, 4, Geometry{Top: 26, Height: 10}); out.Lookahead != 3 {
		t.Fatalf("expected look-ahead to page 3, got %+v", out)
	}
	if out := tr.OnScroll(flow, 2, Geometry{Top: 31, Height: 10}); out.Lookahead != 0 {
		t.Fatalf("no page after the last, got %+v", out)
	}
}

func TestOnScrollLookaheadFollowsLastMaterializedPage(t *testing.T) {
	tr := New(5, nil)
	tr.Reset(1)
	// Pages 1-3 are already in the flow while page 1 is still current.
	flow := flowOf(10, 10, 10)
	out := tr.OnScroll(flow, 6, Geometry{Top: 0, Height: 30})
	if out.Lookahead != 4 {
		t.Fatalf("expected look-ahead to page 4, got %+v", out)
	}
}

func TestOnScrollLookaheadSurvivesPersistFailure(t *testing.T) {
	tr := New(50, func(int) error { return errors.New("disk full") })
	out := tr.OnScroll(flowOf(10), 3, Geometry{Top: 0, Height: 20})
	if out.PersistErr == nil {
		t.Fatal("expected persist error to be reported")
	}
	if out.Lookahead != 2 || out.Current != 1 {
		t.Fatalf("look-ahead and detection should still apply, got %+v", out)
	}
}

func TestOnScrollEmptyFlow(t *testing.T) {
	tr := New(5, nil)
	if out := tr.OnScroll(render.NewFlow(), 3, Geometry{Height: 10}); out.Lookahead != 0 || out.Changed {
		t.Fatalf("empty flow should be a no-op, got %+v", out)
	}
}
