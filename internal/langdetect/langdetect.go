// Package langdetect names the language a selected phrase is written in, so
// language-mode prompts can tell the model what it is translating from.
package langdetect

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// Phrases shorter than this are too ambiguous to classify.
const minRunes = 12

var supported = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Vietnamese,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
}

var (
	once     sync.Once
	detector lingua.LanguageDetector
)

func get() lingua.LanguageDetector {
	once.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supported...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}

// Detect returns the English name of text's language ("French") or "" when
// the text is too short or no language is a clear match. Emphasis markers
// are ignored.
func Detect(text string) string {
	text = strings.NewReplacer("<b>", "", "</b>", "").Replace(text)
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minRunes {
		return ""
	}
	lang, ok := get().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return displayName(lang)
}

func displayName(lang lingua.Language) string {
	name := strings.ToLower(lang.String())
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
