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

type ollamaClient struct {
	host   string
	client *http.Client
}

func (c *ollamaClient) provider() string { return "ollama" }

func (c *ollamaClient) complete(ctx context.Context, model, _ string, prompt string) (string, error) {
	payload := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"num_predict": MaxTokens,
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", networkError(c.provider(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError(c.provider(), err)
	}
	if resp.StatusCode >= 400 {
		return "", statusError(c.provider(), resp.StatusCode, resp.Status, string(body))
	}

	var parsed struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformedError(c.provider(), err)
	}
	if parsed.Response == "" {
		return "", malformedError(c.provider(), fmt.Errorf("ollama returned an empty response"))
	}
	return strings.TrimSpace(parsed.Response), nil
}
