package llm

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	if got := pickHTTPClient(custom); got != custom {
		t.Fatalf("expected custom client to be returned")
	}
}

func TestPickHTTPClientUsesLongerTimeout(t *testing.T) {
	client := pickHTTPClient(nil)
	if client.Timeout != defaultLLMHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultLLMHTTPTimeout, client.Timeout)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"flashcard": ModeFlashcard, " Explain ": ModeExplain, "LANGUAGE": ModeLanguage} {
		got, ok := ParseMode(in)
		if !ok || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseMode("summary"); ok {
		t.Fatal("unknown mode should be rejected")
	}
}

func TestNewRequestAssignsDistinctIDs(t *testing.T) {
	a := NewRequest(ModeExplain, "m", "p", "")
	b := NewRequest(ModeExplain, "m", "p", "")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}

func TestBuildPrompts(t *testing.T) {
	prompts := DefaultPrompts()

	got, err := prompts.Build(ModeFlashcard, PromptInput{Phrase: "Load balancing spreads work."})
	if err != nil {
		t.Fatalf("Build(flashcard) error = %v", err)
	}
	if !strings.HasPrefix(got, "Generate flashcards as a JSON array") || !strings.HasSuffix(got, "\n\nLoad balancing spreads work.") {
		t.Fatalf("unexpected flashcard prompt: %q", got)
	}

	got, err = prompts.Build(ModeLanguage, PromptInput{
		Phrase:         "Hamas <b>refused</b> to join.",
		Word:           "refused",
		TargetLanguage: "Vietnamese",
		SourceLanguage: "English",
	})
	if err != nil {
		t.Fatalf("Build(language) error = %v", err)
	}
	for _, want := range []string{
		"for the given word in Vietnamese.",
		"The phrase is written in English.\nNow explain the word in the phrase below:",
		"Word: \"refused\"\nPhrase: \"Hamas <b>refused</b> to join.\"",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("language prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "{") && strings.Contains(got, "{targetLanguage}") {
		t.Fatal("placeholders should be replaced")
	}

	if _, err := prompts.Build(ModeExplain, PromptInput{Phrase: "   "}); err == nil {
		t.Fatal("empty phrase should fail")
	}
	if _, err := prompts.Build(ModeLanguage, PromptInput{Phrase: "x"}); err == nil {
		t.Fatal("language mode needs a word")
	}
}

func TestBuildPromptUsesCustomTemplate(t *testing.T) {
	prompts := Prompts{Explain: "Explain briefly:"}
	got, err := prompts.Build(ModeExplain, PromptInput{Phrase: "text"})
	if err != nil || got != "Explain briefly:\n\ntext" {
		t.Fatalf("Build() = %q, %v", got, err)
	}
	got, _ = prompts.Build(ModeLanguage, PromptInput{Word: "w", Phrase: "p"})
	if !strings.Contains(got, "for the given word in English.") {
		t.Fatal("language template should fall back to the default and English")
	}
}
