package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"testing"

	"github.com/csheth/studyreader/internal/document"
)

type fakePage struct {
	number int
	size   document.Size
	items  []document.TextItem
	err    error
	dpi    float64
}

func (p *fakePage) Number() int         { return p.number }
func (p *fakePage) Size() document.Size { return p.size }

func (p *fakePage) TextContent() ([]document.TextItem, error) {
	return p.items, p.err
}

func (p *fakePage) Raster(dpi float64) (image.Image, error) {
	p.dpi = dpi
	w := int(math.Floor(p.size.Width * dpi / 72))
	h := int(math.Floor(p.size.Height * dpi / 72))
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

type fakeDoc struct {
	pages []*fakePage
}

func newFakeDoc(n int) *fakeDoc {
	doc := &fakeDoc{}
	for i := 1; i <= n; i++ {
		doc.pages = append(doc.pages, &fakePage{
			number: i,
			size:   document.Size{Width: 200, Height: 160},
			items: []document.TextItem{
				{Text: fmt.Sprintf("Page %d heading.", i), X: 16, Y: 16},
				{Text: "Body text follows here.", X: 16, Y: 48},
			},
		})
	}
	return doc
}

func (d *fakeDoc) Name() string        { return "fake.pdf" }
func (d *fakeDoc) Kind() document.Kind { return document.KindPDF }
func (d *fakeDoc) NumPages() int       { return len(d.pages) }
func (d *fakeDoc) Close() error        { return nil }

func (d *fakeDoc) Page(n int) (document.Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", n)
	}
	return d.pages[n-1], nil
}

func TestClampScale(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{in: 0.1, want: 0.5},
		{in: -3, want: 0.5},
		{in: 0.5, want: 0.5},
		{in: 2.25, want: 2.25},
		{in: 5, want: 5},
		{in: 12, want: 5},
		{in: math.NaN(), want: 0.5},
		{in: math.Inf(1), want: 5},
	}
	for _, tc := range cases {
		if got := ClampScale(tc.in, 0.5, 5); got != tc.want {
			t.Fatalf("ClampScale(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewViewportPixelSurface(t *testing.T) {
	vp := NewViewport(document.Size{Width: 612, Height: 792}, 1.5, 2)
	if vp.Width != 918 || vp.Height != 1188 {
		t.Fatalf("unexpected display size %vx%v", vp.Width, vp.Height)
	}
	if vp.PixelWidth != 1836 || vp.PixelHeight != 2376 {
		t.Fatalf("unexpected pixel size %dx%d", vp.PixelWidth, vp.PixelHeight)
	}
	if vp.DPI() != 216 {
		t.Fatalf("unexpected dpi %v", vp.DPI())
	}
	if NewViewport(document.Size{Width: 10, Height: 10}, 1, 0).DevicePixelRatio != 1 {
		t.Fatal("zero pixel ratio should fall back to 1")
	}
}

func TestGridLayoutPushesCollidingRows(t *testing.T) {
	grid := Grid{CellWidth: 8, CellHeight: 16}
	items := []document.TextItem{
		{Text: "first", X: 0, Y: 0},
		{Text: "same row", X: 80, Y: 4},
		{Text: "  ", X: 0, Y: 20},
		{Text: "later", X: 32, Y: 64},
	}
	layer := grid.Layout(items, 1, 100)
	if layer.Rows != 7 {
		t.Fatalf("expected 7 rows, got %d", layer.Rows)
	}
	want := []Line{
		{Row: 0, Col: 0, Text: "first", Item: 0},
		{Row: 1, Col: 10, Text: "same row", Item: 1},
		{Row: 4, Col: 4, Text: "later", Item: 3},
	}
	if len(layer.Lines) != len(want) {
		t.Fatalf("unexpected lines %+v", layer.Lines)
	}
	for i := range want {
		if layer.Lines[i] != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i, layer.Lines[i], want[i])
		}
	}
	rows := layer.Strings(8)
	if rows[1] != "        " || rows[4] != "    late" {
		t.Fatalf("unexpected rendering %q", rows)
	}
	if line, ok := layer.LineAt(4); !ok || line.Text != "later" {
		t.Fatalf("LineAt(4) = %+v, %v", line, ok)
	}
	if _, ok := layer.LineAt(2); ok {
		t.Fatal("row 2 should be empty")
	}
}

func TestRendererBuildsLayerAndRaster(t *testing.T) {
	doc := newFakeDoc(1)
	r := Renderer{Grid: Grid{CellWidth: 8, CellHeight: 16}, DevicePixelRatio: 2, Raster: true}
	page, err := r.Render(doc, 1, 2)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if page.Rows() != 20 {
		t.Fatalf("expected 20 rows at scale 2, got %d", page.Rows())
	}
	if page.Layer.Lines[1].Row != 6 || page.Layer.Lines[1].Col != 4 {
		t.Fatalf("unexpected body placement %+v", page.Layer.Lines[1])
	}
	if page.Raster == nil {
		t.Fatal("expected raster surface")
	}
	bounds := page.Raster.Bounds()
	if bounds.Dx() != page.Viewport.PixelWidth || bounds.Dy() != page.Viewport.PixelHeight {
		t.Fatalf("raster %v does not match pixel surface %dx%d", bounds, page.Viewport.PixelWidth, page.Viewport.PixelHeight)
	}
	if doc.pages[0].dpi != 288 {
		t.Fatalf("unexpected raster dpi %v", doc.pages[0].dpi)
	}
}

func TestRendererWrapsFailures(t *testing.T) {
	doc := newFakeDoc(2)
	doc.pages[1].err = errors.New("broken content stream")
	r := Renderer{Grid: Grid{CellWidth: 8, CellHeight: 16}}

	_, err := r.Render(doc, 2, 1)
	var renderErr *RenderError
	if !errors.As(err, &renderErr) || renderErr.Page != 2 {
		t.Fatalf("expected RenderError for page 2, got %v", err)
	}
	if _, err := r.Render(doc, 9, 1); !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError for missing page, got %v", err)
	}
}

func TestPageHighlights(t *testing.T) {
	page := &Page{Number: 1}
	if !page.AddHighlight(Highlight{Item: 1, Start: 0, End: 4}) {
		t.Fatal("expected first highlight to be added")
	}
	if page.AddHighlight(Highlight{Item: 1, Start: 0, End: 4}) {
		t.Fatal("duplicate highlight should be ignored")
	}
	if page.AddHighlight(Highlight{Item: 1, Start: 3, End: 3}) {
		t.Fatal("empty highlight should be ignored")
	}
	page.AddHighlight(Highlight{Item: 2, Start: 1, End: 2})
	if len(page.Highlights()) != 2 || len(page.HighlightsFor(1)) != 1 {
		t.Fatalf("unexpected highlights %+v", page.Highlights())
	}
}
