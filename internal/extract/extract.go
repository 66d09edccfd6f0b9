package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Radius is the number of characters taken on each side of the selection by
// FixedRadius.
const Radius = 50

var whitespaceRe = regexp.MustCompile(`\s+`)

// SentenceWindow widens the selection to the sentence that contains it. The
// walk goes backward from the selection start until an uppercase letter that
// follows sentence-ending punctuation and whitespace, or that opens a run. It
// then goes forward from the selection end to the first '.', '!' or '?'
// followed by whitespace or the end of a run. When either walk runs out of
// runs the raw selection is used.
func SentenceWindow(runs []Run, sel Selection) Context {
	anchor := normalize(sel.Text(runs))
	ctx := Context{Anchor: anchor, Phrase: anchor, Mode: ModeSentence}
	if !sel.valid(runs) {
		return ctx
	}
	start, ok := sentenceStart(runs, sel.Start)
	if !ok {
		return ctx
	}
	end, ok := sentenceEnd(runs, sel.End)
	if !ok {
		return ctx
	}
	if phrase := normalize(Selection{Start: start, End: end}.Text(runs)); phrase != "" {
		ctx.Phrase = phrase
	}
	return ctx
}

func sentenceStart(runs []Run, from Position) (Position, bool) {
	for i := from.Run; i >= 0; i-- {
		text := []rune(runs[i].Text)
		limit := len(text) - 1
		if i == from.Run && from.Offset < limit {
			limit = from.Offset
		}
		for k := limit; k >= 0; k-- {
			if unicode.IsUpper(text[k]) && (k == 0 || followsSentenceEnd(text, k)) {
				return Position{Run: i, Offset: k}, true
			}
		}
	}
	return Position{}, false
}

// followsSentenceEnd reports whether text[k] is preceded by whitespace which
// is in turn preceded by '.', '!' or '?'.
func followsSentenceEnd(text []rune, k int) bool {
	j := k - 1
	if j < 0 || !unicode.IsSpace(text[j]) {
		return false
	}
	for j >= 0 && unicode.IsSpace(text[j]) {
		j--
	}
	return j >= 0 && isSentenceEnd(text[j])
}

func sentenceEnd(runs []Run, from Position) (Position, bool) {
	for i := from.Run; i < len(runs); i++ {
		text := []rune(runs[i].Text)
		k := 0
		if i == from.Run {
			// A selection that already ends on the stop keeps its sentence.
			k = from.Offset
			if k > 0 {
				k--
			}
		}
		for ; k < len(text); k++ {
			if isSentenceEnd(text[k]) && (k+1 == len(text) || unicode.IsSpace(text[k+1])) {
				return Position{Run: i, Offset: k + 1}, true
			}
		}
	}
	return Position{}, false
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// FixedRadius takes Radius characters before the selection start and after
// the selection end, clipped to the runs holding those endpoints, and wraps
// every case-insensitive whole-word occurrence of the selected word in
// <b></b>.
func FixedRadius(runs []Run, sel Selection) Context {
	anchor := normalize(sel.Text(runs))
	ctx := Context{Anchor: anchor, Phrase: anchor, Mode: ModeWindow}
	if !sel.valid(runs) {
		return ctx
	}
	start := sel.Start
	start.Offset -= Radius
	if start.Offset < 0 {
		start.Offset = 0
	}
	end := sel.End
	end.Offset += Radius
	if n := len([]rune(runs[end.Run].Text)); end.Offset > n {
		end.Offset = n
	}
	phrase := normalize(Selection{Start: start, End: end}.Text(runs))
	ctx.Phrase = Emphasize(phrase, anchor)
	return ctx
}

// Emphasize wraps each whole-word, case-insensitive occurrence of word in
// <b></b>.
func Emphasize(phrase, word string) string {
	w := []rune(strings.TrimSpace(word))
	if len(w) == 0 {
		return phrase
	}
	target := string(w)
	p := []rune(phrase)
	var b strings.Builder
	for i := 0; i < len(p); {
		end := i + len(w)
		if end <= len(p) && strings.EqualFold(string(p[i:end]), target) && wordEdge(p, i, w[0], true) && wordEdge(p, end, w[len(w)-1], false) {
			b.WriteString("<b>")
			b.WriteString(string(p[i:end]))
			b.WriteString("</b>")
			i = end
			continue
		}
		b.WriteRune(p[i])
		i++
	}
	return b.String()
}

// wordEdge checks the boundary at index at. Edges of the word that are not
// themselves word characters need no boundary.
func wordEdge(p []rune, at int, edge rune, before bool) bool {
	if !isWordRune(edge) {
		return true
	}
	if before {
		return at == 0 || !isWordRune(p[at-1])
	}
	return at == len(p) || !isWordRune(p[at])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func normalize(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
