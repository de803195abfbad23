package ghost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiClient calls the Google generative language API
type GeminiClient struct {
	BaseURL string
	Model   string
	http    *http.Client
}

// NewGemini creates a Gemini client
func NewGemini(baseURL, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	return &GeminiClient{BaseURL: strings.TrimRight(baseURL, "/"), Model: model, http: &http.Client{Timeout: 20 * time.Second}}
}

func (c *GeminiClient) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrMissingKey)
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": prompt}}},
		},
	}
	b, _ := json.Marshal(payload)
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.Model, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus("gemini", resp); err != nil {
		return "", err
	}
	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyCompletion)
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

// checkStatus maps a non-2xx response to an error. 429 is a quota error.
func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", provider, ErrQuotaExceeded)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Error.Message != "" {
		return fmt.Errorf("%s status %d: %s", provider, resp.StatusCode, body.Error.Message)
	}
	return fmt.Errorf("%s status %d", provider, resp.StatusCode)
}
