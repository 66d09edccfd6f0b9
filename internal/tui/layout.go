package tui

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/studyreader/internal/extract"
	"github.com/csheth/studyreader/internal/render"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	cardsWidth     int
	sideBySide     bool
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		cardsWidth:     cardPanelWidth,
	}
}

// Update sizes the page viewport for a window. The card panel sits beside
// the pages when both fit, otherwise it replaces them while focused.
func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	l.sideBySide = width-cardPanelWidth-viewportHorizontalPadding >= minViewportWidth+viewportHorizontalPadding
	innerWidth := width - viewportHorizontalPadding
	if l.sideBySide {
		innerWidth -= cardPanelWidth
	}
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.cardsWidth = cardPanelWidth
	if !l.sideBySide {
		l.cardsWidth = innerWidth
	}
	// title, status bar, message line and the gaps between them
	const chrome = 7
	contentHeight := height - chrome
	if contentHeight < 5 {
		contentHeight = 5
	}
	l.viewportHeight = contentHeight
}

// styleClass orders overlays on a cell; a higher class wins.
type styleClass int

const (
	classPlain styleClass = iota
	classHighlight
	classSelection
	classCursor
)

// flowLines renders the materialized pages as viewport rows. Row i of the
// result is row i of the flow, so viewport offsets are flow offsets.
func (m *model) flowLines() []string {
	flow := m.sess.Flow()
	start, end, selecting := m.selectionCells()
	var lines []string
	for i, p := range flow.Pages() {
		if i > 0 {
			for g := 0; g < render.PageGap; g++ {
				lines = append(lines, m.pageRule(p.Number))
			}
		}
		for r := 0; r < p.Rows(); r++ {
			row := len(lines)
			classes := m.rowClasses(p, r, row, start, end, selecting)
			lines = append(lines, m.renderRow(p, r, classes))
		}
	}
	return lines
}

func (m *model) pageRule(page int) string {
	label := " page " + strconv.Itoa(page) + " "
	width := m.viewport.Width
	if width <= len(label)+2 {
		return pageRuleStyle.Render(label)
	}
	left := 2
	right := width - left - len(label)
	return pageRuleStyle.Render(strings.Repeat("─", left) + label + strings.Repeat("─", right))
}

// rowClasses assigns an overlay class to every cell of a page row.
func (m *model) rowClasses(p *render.Page, pageRow, row int, start, end cell, selecting bool) []styleClass {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	classes := make([]styleClass, width)
	mark := func(from, to int, c styleClass) {
		if from < 0 {
			from = 0
		}
		for i := from; i < to && i < width; i++ {
			if c > classes[i] {
				classes[i] = c
			}
		}
	}
	if line, ok := p.Layer.LineAt(pageRow); ok {
		for _, h := range p.HighlightsFor(line.Item) {
			mark(line.Col+h.Start, line.Col+h.End, classHighlight)
		}
	}
	if selecting && row >= start.row && row <= end.row {
		from, to := 0, width
		if row == start.row {
			from = start.col
		}
		if row == end.row {
			to = end.col + 1
		}
		mark(from, to, classSelection)
	}
	if m.focus == focusPages && row == m.cursor.row {
		mark(m.cursor.col, m.cursor.col+1, classCursor)
	}
	return classes
}

func (m *model) renderRow(p *render.Page, pageRow int, classes []styleClass) string {
	var text []rune
	if line, ok := p.Layer.LineAt(pageRow); ok {
		text = []rune(strings.Repeat(" ", line.Col) + line.Text)
	}
	last := len(text)
	if last > len(classes) {
		last = len(classes)
	}
	for i := len(classes) - 1; i >= last; i-- {
		if classes[i] != classPlain {
			last = i + 1
			break
		}
	}
	var b strings.Builder
	segStart := 0
	flush := func(to int) {
		if to <= segStart {
			return
		}
		seg := make([]rune, 0, to-segStart)
		for i := segStart; i < to; i++ {
			if i < len(text) {
				seg = append(seg, text[i])
			} else {
				seg = append(seg, ' ')
			}
		}
		b.WriteString(styleFor(classes[segStart]).Render(string(seg)))
		segStart = to
	}
	for i := 1; i <= last; i++ {
		if i == last || classes[i] != classes[segStart] {
			flush(i)
		}
	}
	// wide runes can still overflow the row
	return truncate.String(b.String(), uint(len(classes)))
}

func styleFor(c styleClass) lipgloss.Style {
	switch c {
	case classHighlight:
		return highlightStyle
	case classSelection:
		return selectionLineStyle
	case classCursor:
		return currentLineStyle
	default:
		return plainStyle
	}
}

// selectionCells orders the highlight-mode anchor and the cursor.
func (m *model) selectionCells() (start, end cell, ok bool) {
	if m.mode != modeHighlight {
		return cell{}, cell{}, false
	}
	start, end = m.anchor, m.cursor
	if end.before(start) {
		start, end = end, start
	}
	return start, end, true
}

// lineAt returns the laid out text on a flow row.
func (m *model) lineAt(row int) (render.Line, bool) {
	page, pageRow, ok := m.sess.Flow().At(row)
	if !ok {
		return render.Line{}, false
	}
	return page.Layer.LineAt(pageRow)
}

// wordAt selects the word under c.
func (m *model) wordAt(c cell) (extract.Selection, bool) {
	line, ok := m.lineAt(c.row)
	if !ok {
		return extract.Selection{}, false
	}
	runes := []rune(line.Text)
	off := c.col - line.Col
	if off < 0 || off >= len(runes) || !isWordRune(runes[off]) {
		return extract.Selection{}, false
	}
	from, to := off, off+1
	for from > 0 && isWordRune(runes[from-1]) {
		from--
	}
	for to < len(runes) && isWordRune(runes[to]) {
		to++
	}
	start, ok := m.sess.PositionAt(c.row, line.Col+from)
	if !ok {
		return extract.Selection{}, false
	}
	end, ok := m.sess.PositionAt(c.row, line.Col+to)
	if !ok {
		return extract.Selection{}, false
	}
	return extract.Selection{Start: start, End: end}, true
}

// spanSelection maps the highlighted cells onto the run sequence. Rows
// without text at either edge are skipped inward.
func (m *model) spanSelection(start, end cell) (extract.Selection, bool) {
	var sel extract.Selection
	found := false
	for r := start.row; r <= end.row && !found; r++ {
		col := 0
		if r == start.row {
			col = start.col
		}
		sel.Start, found = m.sess.PositionAt(r, col)
	}
	if !found {
		return extract.Selection{}, false
	}
	found = false
	for r := end.row; r >= start.row && !found; r-- {
		col := m.viewport.Width + 1
		if r == end.row {
			col = end.col + 1
		}
		sel.End, found = m.sess.PositionAt(r, col)
	}
	if !found || !positionBefore(sel.Start, sel.End) {
		return extract.Selection{}, false
	}
	return sel, true
}

func positionBefore(a, b extract.Position) bool {
	return a.Run < b.Run || (a.Run == b.Run && a.Offset < b.Offset)
}

// nextWordStart finds the start of the next word in dir from off, within a
// single line.
func nextWordStart(runes []rune, off, dir int) (int, bool) {
	if dir > 0 {
		i := off
		for i < len(runes) && i >= 0 && isWordRune(runes[i]) {
			i++
		}
		if i < 0 {
			i = 0
		}
		for i < len(runes) && !isWordRune(runes[i]) {
			i++
		}
		return i, i < len(runes)
	}
	i := off - 1
	if i >= len(runes) {
		i = len(runes) - 1
	}
	for i >= 0 && !isWordRune(runes[i]) {
		i--
	}
	if i < 0 {
		return 0, false
	}
	for i > 0 && isWordRune(runes[i-1]) {
		i--
	}
	return i, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-'
}
