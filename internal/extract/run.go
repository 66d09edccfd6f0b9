// Package extract turns a raw text selection into a bounded context phrase.
// It works on the flat sequence of text runs the reader has materialized, in
// reading order.
package extract

// Run is one contiguous piece of text as laid out on a page.
type Run struct {
	Page  int
	Index int
	Text  string
}

// Position addresses a rune offset inside a run of the sequence.
type Position struct {
	Run    int
	Offset int
}

// Selection spans from Start (inclusive) to End (exclusive). Both positions
// index into the same run sequence.
type Selection struct {
	Start Position
	End   Position
}

type Mode string

const (
	ModeSentence Mode = "sentence"
	ModeWindow   Mode = "window"
)

// Context is the phrase built around a selection.
type Context struct {
	Anchor string
	Phrase string
	Mode   Mode
}

// Text returns the selected characters, joining runs with a space.
func (s Selection) Text(runs []Run) string {
	if !s.valid(runs) {
		return ""
	}
	if s.Start.Run == s.End.Run {
		r := []rune(runs[s.Start.Run].Text)
		return string(r[s.Start.Offset:s.End.Offset])
	}
	var out []rune
	for i := s.Start.Run; i <= s.End.Run; i++ {
		r := []rune(runs[i].Text)
		switch i {
		case s.Start.Run:
			out = append(out, r[s.Start.Offset:]...)
		case s.End.Run:
			out = append(out, ' ')
			out = append(out, r[:s.End.Offset]...)
		default:
			out = append(out, ' ')
			out = append(out, r...)
		}
	}
	return string(out)
}

func (s Selection) valid(runs []Run) bool {
	if s.Start.Run < 0 || s.End.Run >= len(runs) || s.Start.Run > s.End.Run {
		return false
	}
	if s.Start.Offset < 0 || s.Start.Offset > len([]rune(runs[s.Start.Run].Text)) {
		return false
	}
	if s.End.Offset < 0 || s.End.Offset > len([]rune(runs[s.End.Run].Text)) {
		return false
	}
	if s.Start.Run == s.End.Run && s.Start.Offset > s.End.Offset {
		return false
	}
	return true
}
