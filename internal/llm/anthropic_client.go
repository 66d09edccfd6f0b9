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

const anthropicVersion = "2023-06-01"

type anthropicClient struct {
	base   string
	client *http.Client
}

func (c *anthropicClient) provider() string { return "anthropic" }

func (c *anthropicClient) complete(ctx context.Context, model, apiKey, prompt string) (string, error) {
	payload := map[string]any{
		"model":      model,
		"max_tokens": MaxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/messages", c.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
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
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformedError(c.provider(), err)
	}
	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", malformedError(c.provider(), fmt.Errorf("anthropic returned no text content"))
	}
	return strings.TrimSpace(text.String()), nil
}
