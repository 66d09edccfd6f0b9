package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/csheth/studyreader/internal/config"
)

func registryFor(t *testing.T, specs ...config.ModelSpec) *Registry {
	t.Helper()
	cfg := config.Default()
	cfg.Models = specs
	r := NewRegistry(cfg, nil)
	r.lookupEnv = func(key string) (string, bool) {
		if key == "TEST_KEY" {
			return "env-secret", true
		}
		return "", false
	}
	return r
}

func TestRegistryAnthropicFlashcards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "env-secret" {
			t.Fatalf("expected key from environment, got %q", got)
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Fatal("missing anthropic-version header")
		}
		var payload struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "claude-3-haiku-20240307" || payload.MaxTokens != MaxTokens {
			t.Fatalf("unexpected payload %+v", payload)
		}
		if len(payload.Messages) != 1 || payload.Messages[0].Content != "make cards" {
			t.Fatalf("unexpected messages %+v", payload.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"[{\"question\":\"Q\",\"answer\":\"A\"}]"}]}`))
	}))
	defer server.Close()

	r := registryFor(t, config.ModelSpec{Prefix: "claude-", Provider: "anthropic", KeyEnv: "TEST_KEY", Endpoint: server.URL + "/v1"})
	req := NewRequest(ModeFlashcard, "claude-3-haiku-20240307", "make cards", "")
	resp, err := r.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.RequestID != req.ID || resp.Mode != ModeFlashcard {
		t.Fatalf("response not tagged with its request: %+v", resp)
	}
	if len(resp.Flashcards) != 1 || resp.Flashcards[0].Answer != "A" {
		t.Fatalf("unexpected cards %+v", resp.Flashcards)
	}
}

func TestRegistryOpenAICompatibleStripsPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer explicit" {
			t.Fatalf("explicit key should win, got %q", got)
		}
		var payload struct {
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "google/gemini-exp-1206:free" {
			t.Fatalf("prefix should be stripped, got %q", payload.Model)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"explanation\":\"Simple.\"}"}}]}`))
	}))
	defer server.Close()

	r := registryFor(t, config.ModelSpec{Prefix: "openrouter/", Provider: "openai", KeyEnv: "OTHER_KEY", Endpoint: server.URL, Strip: true})
	resp, err := r.Generate(context.Background(), NewRequest(ModeExplain, "openrouter/google/gemini-exp-1206:free", "explain", "explicit"))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Explanation != "Simple." {
		t.Fatalf("unexpected explanation %q", resp.Explanation)
	}
}

func TestRegistryOllamaNeedsNoKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload struct {
			Model  string `json:"model"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "llama3" || payload.Stream {
			t.Fatalf("unexpected payload %+v", payload)
		}
		w.Write([]byte(`{"response":"T: hola\nQ: Say <b>hello</b>.\nA: A greeting.","done":true}`))
	}))
	defer server.Close()

	r := registryFor(t, config.ModelSpec{Prefix: "ollama/", Provider: "ollama", Endpoint: server.URL, Strip: true})
	resp, err := r.Generate(context.Background(), NewRequest(ModeLanguage, "ollama/llama3", "p", ""))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Flashcard == nil || resp.Flashcard.Word != "hello" || resp.Flashcard.Translation != "hola" {
		t.Fatalf("unexpected card %+v", resp.Flashcard)
	}
}

func TestRegistryErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer failing.Close()
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"no cards here"}}]}`))
	}))
	defer garbage.Close()

	ctx := context.Background()

	r := registryFor(t, config.ModelSpec{Prefix: "gpt-", Provider: "openai", KeyEnv: "MISSING_KEY", Endpoint: failing.URL})
	if _, err := r.Generate(ctx, NewRequest(ModeFlashcard, "gpt-4o", "p", "")); !IsKind(err, KindCredential) {
		t.Fatalf("expected credential error, got %v", err)
	}

	_, err := r.Generate(ctx, NewRequest(ModeFlashcard, "gpt-4o", "p", "key"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindStatus || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status error, got %v", err)
	}

	r = registryFor(t, config.ModelSpec{Prefix: "gpt-", Provider: "openai", Endpoint: garbage.URL})
	if _, err := r.Generate(ctx, NewRequest(ModeFlashcard, "gpt-4o", "p", "")); !IsKind(err, KindMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}

	if _, err := r.Generate(ctx, NewRequest(ModeFlashcard, "mistral-large", "p", "")); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected unknown model error, got %v", err)
	}

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	closed.Close()
	r = registryFor(t, config.ModelSpec{Prefix: "gpt-", Provider: "openai", Endpoint: closed.URL})
	if _, err := r.Generate(ctx, NewRequest(ModeFlashcard, "gpt-4o", "p", "")); !IsKind(err, KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestNewClientPrefersGateway(t *testing.T) {
	cfg := config.Default()
	if _, ok := NewClient(cfg, nil).(*Registry); !ok {
		t.Fatal("expected direct registry without a gateway url")
	}
	cfg.GatewayURL = "http://127.0.0.1:5000"
	if _, ok := NewClient(cfg, nil).(*GatewayClient); !ok {
		t.Fatal("expected gateway client")
	}
}
