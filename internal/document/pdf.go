package document

import (
	"bytes"
	"fmt"
	"image"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var letterSize = Size{Width: 612, Height: 792}

var extraneousWhitespace = regexp.MustCompile(`\s+`)

func init() {
	api.DisableConfigDir()
}

// ValidatePDF runs pdfcpu's relaxed validation over data.
func ValidatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("pdfcpu validate: %w", err)
	}
	return nil
}

type pdfDocument struct {
	name   string
	data   []byte
	reader *pdf.Reader
	dims   []Size

	rasterOnce sync.Once
	rasterMu   sync.Mutex
	raster     *fitz.Document
	rasterErr  error
}

func openPDF(name string, data []byte) (doc *pdfDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	doc = &pdfDocument{name: name, data: data, reader: reader}
	doc.dims = pageDims(data, reader)
	return doc, nil
}

// pageDims prefers pdfcpu, which resolves inherited boxes and rotation, and
// falls back to the page's own MediaBox.
func pageDims(data []byte, reader *pdf.Reader) []Size {
	n := reader.NumPage()
	sizes := make([]Size, n)
	conf := model.NewDefaultConfiguration()
	if dims, err := api.PageDims(bytes.NewReader(data), conf); err == nil && len(dims) == n {
		for i, d := range dims {
			sizes[i] = Size{Width: d.Width, Height: d.Height}
		}
		return sizes
	}
	for i := range sizes {
		sizes[i] = mediaBox(reader.Page(i + 1))
	}
	return sizes
}

func mediaBox(p pdf.Page) Size {
	box := p.V.Key("MediaBox")
	if box.IsNull() || box.Len() != 4 {
		return letterSize
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return letterSize
	}
	return Size{Width: w, Height: h}
}

func (d *pdfDocument) Name() string  { return d.name }
func (d *pdfDocument) Kind() Kind    { return KindPDF }
func (d *pdfDocument) NumPages() int { return d.reader.NumPage() }

func (d *pdfDocument) Page(n int) (Page, error) {
	if err := checkPage(d, n); err != nil {
		return nil, err
	}
	return &pdfPage{doc: d, number: n, size: d.dims[n-1]}, nil
}

func (d *pdfDocument) Close() error {
	d.rasterMu.Lock()
	defer d.rasterMu.Unlock()
	if d.raster != nil {
		err := d.raster.Close()
		d.raster = nil
		return err
	}
	return nil
}

func (d *pdfDocument) rasterizer() (*fitz.Document, error) {
	d.rasterOnce.Do(func() {
		d.raster, d.rasterErr = fitz.NewFromMemory(d.data)
	})
	return d.raster, d.rasterErr
}

type pdfPage struct {
	doc    *pdfDocument
	number int
	size   Size

	once  sync.Once
	items []TextItem
	err   error
}

func (p *pdfPage) Number() int { return p.number }
func (p *pdfPage) Size() Size  { return p.size }

func (p *pdfPage) TextContent() ([]TextItem, error) {
	p.once.Do(func() {
		p.items, p.err = p.extract()
	})
	return p.items, p.err
}

func (p *pdfPage) extract() (items []TextItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("page %d: malformed content: %v", p.number, r)
		}
	}()
	page := p.doc.reader.Page(p.number)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d missing", p.number)
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", p.number, err)
	}
	for _, row := range rows {
		if item, ok := rowItem(row.Content, float64(row.Position), p.size.Height); ok {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Y != items[j].Y {
			return items[i].Y < items[j].Y
		}
		return items[i].X < items[j].X
	})
	return items, nil
}

// rowItem joins the glyphs of one baseline into a single run, inserting a
// space wherever the horizontal gap is wider than a quarter of the font size.
func rowItem(glyphs []pdf.Text, baseline, pageHeight float64) (TextItem, bool) {
	glyphs = append([]pdf.Text(nil), glyphs...)
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })
	var (
		b            strings.Builder
		startX, endX float64
		fontSize     float64
		started      bool
	)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if !started {
			startX = g.X
			started = true
		} else if g.X-endX > g.FontSize/4 {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		if end := g.X + g.W; end > endX {
			endX = end
		}
		if g.FontSize > fontSize {
			fontSize = g.FontSize
		}
	}
	text := strings.TrimSpace(extraneousWhitespace.ReplaceAllString(b.String(), " "))
	if text == "" {
		return TextItem{}, false
	}
	if fontSize <= 0 {
		fontSize = 10
	}
	y := pageHeight - baseline - fontSize
	if y < 0 {
		y = 0
	}
	return TextItem{Text: text, X: startX, Y: y, Width: endX - startX, Height: fontSize}, true
}

func (p *pdfPage) Raster(dpi float64) (image.Image, error) {
	doc, err := p.doc.rasterizer()
	if err != nil {
		return nil, fmt.Errorf("rasterizer unavailable: %w", err)
	}
	p.doc.rasterMu.Lock()
	defer p.doc.rasterMu.Unlock()
	if p.doc.raster == nil {
		return nil, fmt.Errorf("document closed")
	}
	// fitz pages are zero indexed.
	img, err := doc.ImageDPI(p.number-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", p.number, err)
	}
	return img, nil
}
