package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTokens caps every completion.
const MaxTokens = 1024

// Phrases longer than this are clipped before they are placed in a prompt.
const maxPhraseChars = 4_000

const defaultLLMHTTPTimeout = 3 * time.Minute

// Mode selects the prompt and the response shape.
type Mode string

const (
	ModeFlashcard Mode = "flashcard"
	ModeExplain   Mode = "explain"
	ModeLanguage  Mode = "language"
)

// ParseMode accepts the wire names of the modes.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFlashcard:
		return ModeFlashcard, true
	case ModeExplain:
		return ModeExplain, true
	case ModeLanguage:
		return ModeLanguage, true
	default:
		return "", false
	}
}

// Config describes how to build a provider client.
type Config struct {
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// Request is one call to the completion API. ID tags every response built
// from it.
type Request struct {
	ID     string
	Prompt string
	Model  string
	Mode   Mode
	APIKey string
}

// NewRequest returns a request with a fresh ID.
func NewRequest(mode Mode, model, prompt, apiKey string) Request {
	return Request{
		ID:     uuid.NewString(),
		Prompt: prompt,
		Model:  model,
		Mode:   mode,
		APIKey: apiKey,
	}
}

// Flashcard is a question/answer pair produced in flashcard mode.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// LanguageCard is the language-mode variant of a card.
type LanguageCard struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
}

// Response is the mode-shaped result of a Request. Exactly one of the
// payload fields is set, matching Mode.
type Response struct {
	RequestID   string        `json:"-"`
	Mode        Mode          `json:"-"`
	Flashcards  []Flashcard   `json:"flashcards,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
	Flashcard   *LanguageCard `json:"flashcard,omitempty"`
}

// Client produces structured study content for a request.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Allow longer-running generations (Ollama often needs >60s) and rely on the caller's context for cancellation.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
