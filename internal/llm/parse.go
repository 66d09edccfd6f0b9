package llm

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

var emphasisRe = regexp.MustCompile(`(?is)<b>(.*?)</b>`)

// cardPolicy keeps <b> emphasis and strips every other tag the model emits.
var cardPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b")
	return p
}()

// SanitizeCardText reduces model output to plain text with <b> emphasis and
// collapses whitespace.
func SanitizeCardText(s string) string {
	s = html.UnescapeString(cardPolicy.Sanitize(s))
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// ParseResponse turns raw completion text into the shape mode expects. JSON
// is preferred; the Q:/A: and T:/Q:/A: line formats are accepted as a
// fallback.
func ParseResponse(mode Mode, raw string) (Response, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Response{}, fmt.Errorf("empty %s response", mode)
	}
	switch mode {
	case ModeFlashcard:
		cards := parseFlashcards(raw)
		if len(cards) == 0 {
			return Response{}, fmt.Errorf("unable to parse flashcard payload")
		}
		return Response{Mode: mode, Flashcards: cards}, nil
	case ModeExplain:
		return Response{Mode: mode, Explanation: parseExplanation(raw)}, nil
	case ModeLanguage:
		card, ok := parseLanguageCard(raw)
		if !ok {
			return Response{}, fmt.Errorf("unable to parse language payload")
		}
		return Response{Mode: mode, Flashcard: &card}, nil
	default:
		return Response{}, fmt.Errorf("unknown mode %q", mode)
	}
}

// jsonCandidates returns raw followed by its outermost [...] and {...}
// slices, so prose around a JSON payload is tolerated.
func jsonCandidates(raw string) []string {
	candidates := []string{raw}
	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			candidates = append(candidates, raw[start:end+1])
		}
	}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			candidates = append(candidates, raw[start:end+1])
		}
	}
	return candidates
}

func parseFlashcards(raw string) []Flashcard {
	for _, candidate := range jsonCandidates(raw) {
		var arr []Flashcard
		if err := json.Unmarshal([]byte(candidate), &arr); err == nil {
			if cards := sanitizeFlashcards(arr); len(cards) > 0 {
				return cards
			}
			continue
		}
		var wrapper struct {
			Flashcards []Flashcard `json:"flashcards"`
		}
		if err := json.Unmarshal([]byte(candidate), &wrapper); err == nil {
			if cards := sanitizeFlashcards(wrapper.Flashcards); len(cards) > 0 {
				return cards
			}
		}
	}
	return sanitizeFlashcards(parseQALines(raw))
}

// parseQALines reads "Q: ..." / "A: ..." pairs. A question without an
// answer is dropped.
func parseQALines(raw string) []Flashcard {
	var (
		cards    []Flashcard
		question string
		answer   string
	)
	flush := func() {
		if question != "" && answer != "" {
			cards = append(cards, Flashcard{Question: question, Answer: answer})
		}
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Q:"):
			flush()
			question = strings.TrimSpace(line[2:])
			answer = ""
		case strings.HasPrefix(line, "A:"):
			answer = strings.TrimSpace(line[2:])
		}
	}
	flush()
	return cards
}

func sanitizeFlashcards(cards []Flashcard) []Flashcard {
	var out []Flashcard
	for _, card := range cards {
		c := Flashcard{
			Question: SanitizeCardText(card.Question),
			Answer:   SanitizeCardText(card.Answer),
		}
		if c.Question == "" || c.Answer == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func parseExplanation(raw string) string {
	for _, candidate := range jsonCandidates(raw) {
		var wrapper struct {
			Explanation string `json:"explanation"`
		}
		if err := json.Unmarshal([]byte(candidate), &wrapper); err == nil && strings.TrimSpace(wrapper.Explanation) != "" {
			return SanitizeCardText(wrapper.Explanation)
		}
	}
	return SanitizeCardText(raw)
}

func parseLanguageCard(raw string) (LanguageCard, bool) {
	for _, candidate := range jsonCandidates(raw) {
		var card LanguageCard
		if err := json.Unmarshal([]byte(candidate), &card); err == nil {
			if c, ok := sanitizeLanguageCard(card); ok {
				return c, true
			}
		}
	}
	return sanitizeLanguageCard(parseLanguageLines(raw))
}

// parseLanguageLines reads the T:/Q:/A: format. The word is the emphasized
// part of the question.
func parseLanguageLines(raw string) LanguageCard {
	var card LanguageCard
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "T:"):
			card.Translation = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "Q:"):
			card.Question = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "A:"):
			card.Answer = strings.TrimSpace(line[2:])
		}
	}
	return card
}

func sanitizeLanguageCard(card LanguageCard) (LanguageCard, bool) {
	c := LanguageCard{
		Word:        SanitizeCardText(card.Word),
		Translation: SanitizeCardText(card.Translation),
		Question:    SanitizeCardText(card.Question),
		Answer:      SanitizeCardText(card.Answer),
	}
	if c.Word == "" {
		c.Word = EmphasizedText(c.Question)
	}
	if c.Question == "" || c.Answer == "" || c.Word == "" {
		return LanguageCard{}, false
	}
	return c, true
}

// EmphasizedText returns the content of the first <b></b> in s.
func EmphasizedText(s string) string {
	m := emphasisRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// StripEmphasis removes <b> markers, keeping their content.
func StripEmphasis(s string) string {
	return emphasisRe.ReplaceAllString(s, "$1")
}
