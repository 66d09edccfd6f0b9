package render

import (
	"fmt"
	"image"

	"github.com/csheth/studyreader/internal/document"
)

// Highlight marks a rune range inside one text item of a page.
type Highlight struct {
	Item  int `json:"item"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Page is a materialized page. Once built only its highlight overlays change.
type Page struct {
	Number   int
	Viewport Viewport
	// Raster is nil when rasterization is disabled or the backend has no
	// graphics surface.
	Raster image.Image
	Layer  TextLayer

	highlights []Highlight
}

func (p *Page) Rows() int { return p.Layer.Rows }

// AddHighlight overlays h unless the same range is already highlighted.
func (p *Page) AddHighlight(h Highlight) bool {
	if h.End <= h.Start {
		return false
	}
	for _, existing := range p.highlights {
		if existing == h {
			return false
		}
	}
	p.highlights = append(p.highlights, h)
	return true
}

func (p *Page) Highlights() []Highlight {
	return append([]Highlight(nil), p.highlights...)
}

// HighlightsFor returns the overlays on the given text item.
func (p *Page) HighlightsFor(item int) []Highlight {
	var out []Highlight
	for _, h := range p.highlights {
		if h.Item == item {
			out = append(out, h)
		}
	}
	return out
}

// RenderError reports a failure confined to one page.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer turns a page handle into a materialized Page.
type Renderer struct {
	Grid             Grid
	DevicePixelRatio float64
	// Raster asks backends that can paint a graphics surface to do so.
	Raster bool
}

// Render decodes page n of doc at scale. Every failure is a *RenderError.
func (r Renderer) Render(doc document.Document, n int, scale float64) (*Page, error) {
	handle, err := doc.Page(n)
	if err != nil {
		return nil, &RenderError{Page: n, Err: err}
	}
	vp := NewViewport(handle.Size(), scale, r.DevicePixelRatio)
	items, err := handle.TextContent()
	if err != nil {
		return nil, &RenderError{Page: n, Err: err}
	}
	page := &Page{
		Number:   n,
		Viewport: vp,
		Layer:    r.Grid.Layout(items, scale, vp.Height),
	}
	if r.Raster {
		if rz, ok := handle.(document.Rasterizer); ok {
			img, err := rz.Raster(vp.DPI())
			if err != nil {
				return nil, &RenderError{Page: n, Err: err}
			}
			page.Raster = img
		}
	}
	return page, nil
}
