package storage

import (
	"encoding/json"
	"strconv"
)

const (
	KeyLastWorkingAPIKey           = "lastWorkingAPIKey"
	KeyFlashcardCollectionCount    = "flashcardCollectionCount"
	KeyLanguageCollectionCount     = "languageCollectionCount"
	KeyCollectedFlashcards         = "collectedFlashcards"
	KeyCollectedLanguageFlashcards = "collectedLanguageFlashcards"
	KeyRecentFiles                 = "recentFiles"
	KeyTargetLanguage              = "targetLanguage"
	KeySelectedModel               = "selectedModel"
)

func LastPageKey(file string) string   { return "lastPage_" + file }
func ScaleKey(file string) string      { return "scale_" + file }
func HighlightsKey(file string) string { return "highlights_" + file }

// GetString returns the stored value or def when absent or unreadable.
func GetString(s Store, key, def string) string {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def
	}
	return v
}

// GetInt returns def when the value is absent or not an integer.
func GetInt(s Store, key string, def int) int {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetFloat returns def when the value is absent or not a number.
func GetFloat(s Store, key string, def float64) float64 {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func SetInt(s Store, key string, n int) error {
	return s.Set(key, strconv.Itoa(n))
}

func SetFloat(s Store, key string, f float64) error {
	return s.Set(key, strconv.FormatFloat(f, 'f', -1, 64))
}

// GetJSON decodes the stored value into v and reports whether it succeeded.
// Malformed values leave v untouched.
func GetJSON(s Store, key string, v any) bool {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false
	}
	return true
}

func EncodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func SetJSON(s Store, key string, v any) error {
	raw, err := EncodeJSON(v)
	if err != nil {
		return err
	}
	return s.Set(key, raw)
}
