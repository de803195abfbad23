package ghost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient calls the messages API
type AnthropicClient struct {
	BaseURL string
	Model   string
	http    *http.Client
}

// NewAnthropic creates an Anthropic client
func NewAnthropic(baseURL, model string) *AnthropicClient {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	return &AnthropicClient{BaseURL: strings.TrimRight(baseURL, "/"), Model: model, http: &http.Client{Timeout: 20 * time.Second}}
}

func (c *AnthropicClient) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("anthropic: %w", ErrMissingKey)
	}
	payload := map[string]any{
		"model":      c.Model,
		"max_tokens": 1024,
		"system":     writerRole,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus("anthropic", resp); err != nil {
		return "", err
	}
	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Content) == 0 {
		return "", fmt.Errorf("anthropic: %w", ErrEmptyCompletion)
	}
	return strings.TrimSpace(out.Content[0].Text), nil
}
