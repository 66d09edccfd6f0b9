package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/csheth/studyreader/pkg/logger"
)

const (
	ankiConnectVersion = 6
	ankiModelName      = "Basic"
	ankiMaxRetries     = 3
	ankiRetryDelay     = 500 * time.Millisecond
)

// Anki pushes collected entries into a running Anki through the AnkiConnect
// add-on.
type Anki struct {
	endpoint   string
	client     *http.Client
	logger     *logger.Logger
	retryDelay time.Duration
}

type ankiRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params"`
}

type ankiNote struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Options   ankiNoteOptions   `json:"options"`
	Tags      []string          `json:"tags"`
}

type ankiNoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

func NewAnki(endpoint string, client *http.Client, log *logger.Logger) *Anki {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Anki{endpoint: endpoint, client: client, logger: log, retryDelay: ankiRetryDelay}
}

// Push creates deck if needed and adds one Basic note per entry. Notes Anki
// rejects as duplicates are skipped; the count of added notes is returned.
func (a *Anki) Push(ctx context.Context, deck string, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if _, err := a.send(ctx, "createDeck", map[string]string{"deck": deck}); err != nil {
		return 0, fmt.Errorf("create deck %q: %w", deck, err)
	}

	added := 0
	for i, e := range entries {
		note := ankiNote{
			DeckName:  deck,
			ModelName: ankiModelName,
			Fields: map[string]string{
				"Front": e.Phrase,
				"Back":  e.TranslationAnswer,
			},
			Tags: []string{"studyreader"},
		}
		if _, err := a.send(ctx, "addNote", map[string]any{"note": note}); err != nil {
			a.logger.Warn("Skipping entry %d: %v", i+1, err)
			continue
		}
		added++
	}
	a.logger.Info("Added %d of %d notes to deck %s", added, len(entries), deck)
	return added, nil
}

func (a *Anki) send(ctx context.Context, action string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(ankiRequest{Action: action, Version: ankiConnectVersion, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < ankiMaxRetries; attempt++ {
		if attempt > 0 {
			a.logger.Debug("Retrying %s (attempt %d/%d)", action, attempt+1, ankiMaxRetries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.retryDelay):
			}
		}

		result, err := a.post(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if _, rejected := err.(ankiError); rejected {
			break
		}
	}
	return nil, lastErr
}

// ankiError is an error AnkiConnect reported itself; retrying will not help.
type ankiError string

func (e ankiError) Error() string { return "anki: " + string(e) }

func (a *Anki) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var result struct {
		Error  *string         `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if result.Error != nil {
		return nil, ankiError(*result.Error)
	}
	return result.Result, nil
}
