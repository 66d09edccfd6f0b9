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

// openAIClient speaks the chat completions API. OpenRouter and Gemini expose
// the same surface under their own base URLs.
type openAIClient struct {
	base   string
	client *http.Client
}

func (c *openAIClient) provider() string { return "openai" }

func (c *openAIClient) complete(ctx context.Context, model, apiKey, prompt string) (string, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a concise study assistant."},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
		"max_tokens":  MaxTokens,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
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
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformedError(c.provider(), err)
	}
	if len(parsed.Choices) == 0 {
		return "", malformedError(c.provider(), fmt.Errorf("openai API returned no choices"))
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
