package document

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const (
	textColumns      = 80
	textLinesPerPage = 50
	textMargin       = 72.0
	textLineHeight   = 13.0
	textGlyphWidth   = 6.0
	textFontSize     = 11.0
)

// flowDocument holds pages of pre-wrapped lines laid out on a letter-sized
// sheet. Plain text and EPUB chapters both end up here.
type flowDocument struct {
	name  string
	kind  Kind
	pages [][]string
}

func openText(name string, data []byte) (*flowDocument, error) {
	lines := wrapLines(string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))))
	return &flowDocument{name: name, kind: KindText, pages: paginate(lines)}, nil
}

func wrapLines(text string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, strings.Split(wordwrap.String(line, textColumns), "\n")...)
	}
	return lines
}

func paginate(lines []string) [][]string {
	var pages [][]string
	for len(lines) > 0 {
		n := textLinesPerPage
		if n > len(lines) {
			n = len(lines)
		}
		pages = append(pages, lines[:n])
		lines = lines[n:]
	}
	return pages
}

func (d *flowDocument) Name() string  { return d.name }
func (d *flowDocument) Kind() Kind    { return d.kind }
func (d *flowDocument) NumPages() int { return len(d.pages) }
func (d *flowDocument) Close() error  { return nil }

func (d *flowDocument) Page(n int) (Page, error) {
	if err := checkPage(d, n); err != nil {
		return nil, err
	}
	return &flowPage{number: n, lines: d.pages[n-1]}, nil
}

type flowPage struct {
	number int
	lines  []string
}

func (p *flowPage) Number() int { return p.number }
func (p *flowPage) Size() Size  { return letterSize }

func (p *flowPage) TextContent() ([]TextItem, error) {
	items := make([]TextItem, 0, len(p.lines))
	for i, line := range p.lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, TextItem{
			Text:   line,
			X:      textMargin,
			Y:      textMargin + float64(i)*textLineHeight,
			Width:  float64(len([]rune(line))) * textGlyphWidth,
			Height: textFontSize,
		})
	}
	return items, nil
}
