package render

import (
	"math"
	"strings"

	"github.com/csheth/studyreader/internal/document"
)

// Grid maps display pixels onto terminal cells.
type Grid struct {
	CellWidth  float64
	CellHeight float64
}

// Line is one row of the text layer. Item indexes the page's text content so
// selections and highlights can be traced back to their run.
type Line struct {
	Row  int
	Col  int
	Text string
	Item int
}

// TextLayer overlays a page's graphics with its text positioned on the
// terminal grid. Rows is the page height in cells.
type TextLayer struct {
	Lines []Line
	Rows  int
}

// Layout places items on the grid at scale. Items are expected in reading
// order; an item whose row is already taken is pushed to the next free row so
// no two runs share a line.
func (g Grid) Layout(items []document.TextItem, scale float64, height float64) TextLayer {
	layer := TextLayer{Rows: g.rows(height)}
	next := 0
	for i, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		row := int(math.Round(item.Y * scale / g.CellHeight))
		if row < next {
			row = next
		}
		col := int(item.X * scale / g.CellWidth)
		if col < 0 {
			col = 0
		}
		layer.Lines = append(layer.Lines, Line{Row: row, Col: col, Text: text, Item: i})
		next = row + 1
	}
	if next > layer.Rows {
		layer.Rows = next
	}
	return layer
}

func (g Grid) rows(height float64) int {
	rows := int(math.Ceil(height / g.CellHeight))
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Strings renders the layer as Rows plain lines with every run at its
// column. Runs that overflow width are cut; a non-positive width keeps them
// whole.
func (l TextLayer) Strings(width int) []string {
	out := make([]string, l.Rows)
	for _, line := range l.Lines {
		if line.Row >= len(out) {
			continue
		}
		s := strings.Repeat(" ", line.Col) + line.Text
		if width > 0 {
			if r := []rune(s); len(r) > width {
				s = string(r[:width])
			}
		}
		out[line.Row] = s
	}
	return out
}

// LineAt returns the line laid out on row, if any.
func (l TextLayer) LineAt(row int) (Line, bool) {
	for _, line := range l.Lines {
		if line.Row == row {
			return line, true
		}
		if line.Row > row {
			break
		}
	}
	return Line{}, false
}
