// Package ghost generates answer variants in the voice of a persona. It is
// the content-generation collaborator of the host: slow, fallible, and never
// called from inside a state transition.
package ghost

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Provider names
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOffline   = "offline"
)

const writerRole = "You are a creative writing assistant."

const taskTemplate = `%s

Task: %s

Provide 3 distinct variations of this persona answering the prompt. Return ONLY a valid JSON array of strings: ["ans1", "ans2", "ans3"]. CRITICAL: You must escape all internal quotes with backslashes (e.g. "He said \"Hello\""). Do not use markdown code blocks.`

// Request describes one generation
type Request struct {
	Provider string
	APIKey   string
	Theme    string
	Prompt   string
	AgentID  string
	Persona  string // custom persona text, used when AgentID is CustomAgent
}

// Generator produces answer variants
type Generator interface {
	Generate(ctx context.Context, req Request) ([]string, error)
}

// Completer is a single model backend
type Completer interface {
	Complete(ctx context.Context, apiKey, prompt string) (string, error)
}

// Service routes requests to the configured providers
type Service struct {
	providers map[string]Completer
	keys      map[string]string
	logger    *slog.Logger
}

// NewService creates a service. keys holds fallback api keys per provider,
// used when a request carries none.
func NewService(providers map[string]Completer, keys map[string]string, logger *slog.Logger) *Service {
	if keys == nil {
		keys = map[string]string{}
	}
	return &Service{providers: providers, keys: keys, logger: logger}
}

// Generate validates the request, asks the provider and parses its answer
func (s *Service) Generate(ctx context.Context, req Request) ([]string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLen {
		return nil, ErrPromptTooLong
	}

	persona, err := ResolvePersona(req.Theme, req.AgentID, req.Persona)
	if err != nil {
		return nil, err
	}

	provider := req.Provider
	if provider == "" {
		provider = ProviderOffline
	}
	backend, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	key := req.APIKey
	if key == "" {
		key = s.keys[provider]
	}

	text, err := backend.Complete(ctx, key, fmt.Sprintf(taskTemplate, persona.Instruction, prompt))
	if err != nil {
		s.logger.Warn("generation failed", "provider", provider, "agent", persona.ID, "error", err)
		return nil, err
	}

	variants := ParseVariants(text)
	if len(variants) == 0 {
		return nil, fmt.Errorf("%s: %w", provider, ErrEmptyCompletion)
	}

	s.logger.Debug("generated variants", "provider", provider, "agent", persona.ID, "count", len(variants))
	return variants, nil
}
