// Package render materializes document pages at a scale and decides which
// pages are materialized, in what order and when.
package render

import (
	"math"

	"github.com/csheth/studyreader/internal/document"
)

// pointsPerInch is the PDF user-space unit; a page at scale 1 and pixel
// ratio 1 is rasterized at this resolution.
const pointsPerInch = 72.0

// Viewport is a page's geometry at a scale. Width and Height are the display
// box; PixelWidth and PixelHeight size the raster surface so it stays crisp
// on dense displays while the layout keeps display dimensions.
type Viewport struct {
	Scale            float64
	DevicePixelRatio float64
	Width            float64
	Height           float64
	PixelWidth       int
	PixelHeight      int
}

// NewViewport computes the display and pixel dimensions of a page whose base
// size is base. A non-positive ratio is treated as 1.
func NewViewport(base document.Size, scale, ratio float64) Viewport {
	if ratio <= 0 {
		ratio = 1
	}
	return Viewport{
		Scale:            scale,
		DevicePixelRatio: ratio,
		Width:            base.Width * scale,
		Height:           base.Height * scale,
		PixelWidth:       int(math.Floor(base.Width * scale * ratio)),
		PixelHeight:      int(math.Floor(base.Height * scale * ratio)),
	}
}

// DPI is the rasterization resolution that yields the pixel surface.
func (v Viewport) DPI() float64 {
	return pointsPerInch * v.Scale * v.DevicePixelRatio
}

// ClampScale confines s to [min, max]. NaN clamps to min.
func ClampScale(s, min, max float64) float64 {
	switch {
	case math.IsNaN(s) || s < min:
		return min
	case s > max:
		return max
	default:
		return s
	}
}
