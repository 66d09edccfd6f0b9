package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GatewayClient calls a studyreader gateway's /generate_flashcard route,
// which holds the provider logic server side.
type GatewayClient struct {
	base   string
	client *http.Client
}

func NewGatewayClient(cfg Config) *GatewayClient {
	return &GatewayClient{
		base:   strings.TrimRight(cfg.Endpoint, "/"),
		client: pickHTTPClient(cfg.HTTPClient),
	}
}

func (c *GatewayClient) Name() string {
	return fmt.Sprintf("Gateway (%s)", c.base)
}

func (c *GatewayClient) Generate(ctx context.Context, req Request) (Response, error) {
	payload := map[string]string{
		"prompt": req.Prompt,
		"model":  req.Model,
		"mode":   string(req.Mode),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/generate_flashcard", bytes.NewReader(buf))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.APIKey != "" {
		httpReq.Header.Set("X-API-Key", req.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, networkError("gateway", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, networkError("gateway", err)
	}
	if resp.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
			if failure.Kind == string(KindCredential) {
				return Response{}, credentialError("gateway", fmt.Errorf("%s", failure.Error))
			}
			return Response{}, statusError("gateway", resp.StatusCode, resp.Status, failure.Error)
		}
		return Response{}, statusError("gateway", resp.StatusCode, resp.Status, string(body))
	}

	if err := ValidateWire(req.Mode, body); err != nil {
		return Response{}, malformedError("gateway", err)
	}
	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return Response{}, malformedError("gateway", err)
	}
	out.Flashcards = sanitizeFlashcards(out.Flashcards)
	if req.Mode == ModeFlashcard && len(out.Flashcards) == 0 {
		return Response{}, malformedError("gateway", fmt.Errorf("no usable flashcards"))
	}
	if out.Flashcard != nil {
		card, ok := sanitizeLanguageCard(*out.Flashcard)
		if !ok {
			return Response{}, malformedError("gateway", fmt.Errorf("incomplete language card"))
		}
		out.Flashcard = &card
	}
	out.Explanation = SanitizeCardText(out.Explanation)
	out.RequestID = req.ID
	out.Mode = req.Mode
	return out, nil
}
