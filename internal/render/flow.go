package render

import (
	"sort"

	"github.com/csheth/studyreader/internal/extract"
)

// PageGap is the number of blank rows between consecutive pages.
const PageGap = 1

// Flow is the ordered set of materialized pages as they are stacked in the
// view. Offsets are in rows from the top of the content.
type Flow struct {
	pages []*Page
}

func NewFlow() *Flow {
	return &Flow{}
}

// Insert adds p in page order, replacing an existing page with the same
// number.
func (f *Flow) Insert(p *Page) {
	idx := sort.Search(len(f.pages), func(i int) bool { return f.pages[i].Number >= p.Number })
	if idx < len(f.pages) && f.pages[idx].Number == p.Number {
		f.pages[idx] = p
		return
	}
	f.pages = append(f.pages, nil)
	copy(f.pages[idx+1:], f.pages[idx:])
	f.pages[idx] = p
}

func (f *Flow) Has(n int) bool {
	_, ok := f.Page(n)
	return ok
}

func (f *Flow) Page(n int) (*Page, bool) {
	idx := sort.Search(len(f.pages), func(i int) bool { return f.pages[i].Number >= n })
	if idx < len(f.pages) && f.pages[idx].Number == n {
		return f.pages[idx], true
	}
	return nil, false
}

func (f *Flow) Pages() []*Page {
	return append([]*Page(nil), f.pages...)
}

func (f *Flow) Len() int { return len(f.pages) }

// Last is the highest materialized page number, or 0 when the flow is empty.
func (f *Flow) Last() int {
	if len(f.pages) == 0 {
		return 0
	}
	return f.pages[len(f.pages)-1].Number
}

func (f *Flow) Clear() {
	f.pages = nil
}

// ContentHeight is the total height of the stacked pages in rows.
func (f *Flow) ContentHeight() int {
	height := 0
	for i, p := range f.pages {
		if i > 0 {
			height += PageGap
		}
		height += p.Rows()
	}
	return height
}

// Bounds returns the first row of page n and the row just past its end.
func (f *Flow) Bounds(n int) (top, bottom int, ok bool) {
	offset := 0
	for _, p := range f.pages {
		if p.Number == n {
			return offset, offset + p.Rows(), true
		}
		offset += p.Rows() + PageGap
	}
	return 0, 0, false
}

// At resolves a content row to the page and the row inside that page. Rows
// that fall in a gap report ok=false.
func (f *Flow) At(row int) (page *Page, pageRow int, ok bool) {
	offset := 0
	for _, p := range f.pages {
		if row >= offset && row < offset+p.Rows() {
			return p, row - offset, true
		}
		offset += p.Rows() + PageGap
	}
	return nil, 0, false
}

// Runs flattens the text layers of every materialized page into the
// extraction sequence, in reading order.
func (f *Flow) Runs() []extract.Run {
	var runs []extract.Run
	for _, p := range f.pages {
		for _, line := range p.Layer.Lines {
			runs = append(runs, extract.Run{Page: p.Number, Index: line.Item, Text: line.Text})
		}
	}
	return runs
}

// RunIndex locates the run for a text item of page n inside Runs.
func (f *Flow) RunIndex(n, item int) (int, bool) {
	idx := 0
	for _, p := range f.pages {
		for _, line := range p.Layer.Lines {
			if p.Number == n && line.Item == item {
				return idx, true
			}
			idx++
		}
	}
	return 0, false
}
