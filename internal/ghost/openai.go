package ghost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient calls the chat completions API
type OpenAIClient struct {
	BaseURL string
	Model   string
	http    *http.Client
}

// NewOpenAI creates an OpenAI client
func NewOpenAI(baseURL, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-5-mini"
	}
	return &OpenAIClient{BaseURL: strings.TrimRight(baseURL, "/"), Model: model, http: &http.Client{Timeout: 20 * time.Second}}
}

func (c *OpenAIClient) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrMissingKey)
	}
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": writerRole},
			{"role": "user", "content": prompt},
		},
		"max_completion_tokens": 500,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus("openai", resp); err != nil {
		return "", err
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
