// Package document decodes the supported file types into paginated documents
// exposing page geometry, positioned text and, where the backend can, a
// raster image of each page.
package document

import (
	"fmt"
	"image"
)

// Size is a page's base dimensions in points at scale 1.
type Size struct {
	Width  float64
	Height float64
}

// TextItem is one positioned run of text on a page. Coordinates are in points
// from the top-left corner of the page.
type TextItem struct {
	Text   string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type Page interface {
	Number() int
	Size() Size
	TextContent() ([]TextItem, error)
}

// Rasterizer is implemented by pages that can paint a pixel surface.
type Rasterizer interface {
	Raster(dpi float64) (image.Image, error)
}

type Document interface {
	Name() string
	Kind() Kind
	NumPages() int
	Page(n int) (Page, error)
	Close() error
}

// Open decodes data according to its detected type. The name is used for
// type detection and for per-file persisted state.
func Open(name string, data []byte) (Document, error) {
	kind, err := Classify(name, data)
	if err != nil {
		return nil, err
	}
	var doc Document
	switch kind {
	case KindPDF:
		doc, err = openPDF(name, data)
	case KindText:
		doc, err = openText(name, data)
	case KindEPUB:
		doc, err = openEPUB(name, data)
	}
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	if doc.NumPages() == 0 {
		doc.Close()
		return nil, &DecodeError{Name: name, Err: fmt.Errorf("document has no pages")}
	}
	return doc, nil
}

func checkPage(doc Document, n int) error {
	if n < 1 || n > doc.NumPages() {
		return fmt.Errorf("page %d out of range 1..%d", n, doc.NumPages())
	}
	return nil
}
