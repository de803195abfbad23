package ghost

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubCompleter struct {
	text   string
	err    error
	key    string
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, apiKey, prompt string) (string, error) {
	s.key = apiKey
	s.prompt = prompt
	return s.text, s.err
}

func TestGenerateBuildsPersonaPrompt(t *testing.T) {
	stub := &stubCompleter{text: `["a","b","c"]`}
	svc := NewService(map[string]Completer{ProviderGemini: stub}, map[string]string{ProviderGemini: "fallback"}, testLogger())

	got, err := svc.Generate(context.Background(), Request{
		Provider: ProviderGemini,
		Theme:    "classic",
		Prompt:   "Is cereal a soup?",
		AgentID:  "wiki",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(got))
	}
	if stub.key != "fallback" {
		t.Fatalf("expected configured key to be used, got %q", stub.key)
	}
	if !strings.Contains(stub.prompt, "You are a wikipedia summary.") || !strings.Contains(stub.prompt, "Task: Is cereal a soup?") {
		t.Fatalf("unexpected prompt: %q", stub.prompt)
	}
}

func TestGenerateCustomPersona(t *testing.T) {
	stub := &stubCompleter{text: `["a"]`}
	svc := NewService(map[string]Completer{ProviderOffline: stub}, nil, testLogger())

	_, err := svc.Generate(context.Background(), Request{Prompt: "p", AgentID: CustomAgent, Persona: "a pirate"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(stub.prompt, "a pirate Keep it under 15 words.") {
		t.Fatalf("expected custom persona instruction, got %q", stub.prompt)
	}

	_, err = svc.Generate(context.Background(), Request{Prompt: "p", AgentID: CustomAgent, Persona: strings.Repeat("x", MaxPersonaLen+1)})
	if !errors.Is(err, ErrPersonaTooLong) {
		t.Fatalf("expected ErrPersonaTooLong, got %v", err)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	svc := NewService(map[string]Completer{ProviderOffline: NewOffline(1)}, nil, testLogger())

	if _, err := svc.Generate(context.Background(), Request{Prompt: "p", Theme: "classic", AgentID: "nope"}); !errors.Is(err, ErrUnknownPersona) {
		t.Fatalf("expected ErrUnknownPersona, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), Request{Prompt: strings.Repeat("x", MaxPromptLen+1), Theme: "classic", AgentID: "wiki"}); !errors.Is(err, ErrPromptTooLong) {
		t.Fatalf("expected ErrPromptTooLong, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), Request{Provider: "mystery", Prompt: "p", Theme: "classic", AgentID: "wiki"}); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestOfflineGeneratesThreeVariants(t *testing.T) {
	svc := NewService(map[string]Completer{ProviderOffline: NewOffline(7)}, nil, testLogger())
	got, err := svc.Generate(context.Background(), Request{Prompt: "p", Theme: "cyberpunk", AgentID: "hacker"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != MaxVariants {
		t.Fatalf("expected %d variants, got %d", MaxVariants, len(got))
	}
}

func TestProvidersParseResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, ":generateContent"):
			if r.URL.Query().Get("key") != "k" {
				t.Errorf("gemini key missing")
			}
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"[\"g1\",\"g2\",\"g3\"]"}]}}]}`)
		case r.URL.Path == "/v1/chat/completions":
			if r.Header.Get("Authorization") != "Bearer k" {
				t.Errorf("openai auth header missing")
			}
			_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"[\"o1\",\"o2\",\"o3\"]"}}]}`)
		case r.URL.Path == "/v1/messages":
			if r.Header.Get("x-api-key") != "k" || r.Header.Get("anthropic-version") == "" {
				t.Errorf("anthropic headers missing")
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["system"] != writerRole {
				t.Errorf("anthropic system prompt missing")
			}
			_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"[\"a1\",\"a2\",\"a3\"]"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	backends := map[string]Completer{
		ProviderGemini:    NewGemini(srv.URL, ""),
		ProviderOpenAI:    NewOpenAI(srv.URL, ""),
		ProviderAnthropic: NewAnthropic(srv.URL, ""),
	}
	svc := NewService(backends, nil, testLogger())

	for provider, first := range map[string]string{ProviderGemini: "g1", ProviderOpenAI: "o1", ProviderAnthropic: "a1"} {
		got, err := svc.Generate(context.Background(), Request{Provider: provider, APIKey: "k", Prompt: "p", Theme: "classic", AgentID: "hype"})
		if err != nil {
			t.Fatalf("%s: %v", provider, err)
		}
		if len(got) != 3 || got[0] != first {
			t.Fatalf("%s: unexpected variants %q", provider, got)
		}
	}
}

func TestProviderQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	for name, c := range map[string]Completer{
		ProviderGemini:    NewGemini(srv.URL, ""),
		ProviderOpenAI:    NewOpenAI(srv.URL, ""),
		ProviderAnthropic: NewAnthropic(srv.URL, ""),
	} {
		_, err := c.Complete(context.Background(), "k", "p")
		if !errors.Is(err, ErrQuotaExceeded) {
			t.Fatalf("%s: expected ErrQuotaExceeded, got %v", name, err)
		}
		if !strings.Contains(UserMessage(err), "Quota") {
			t.Fatalf("%s: expected quota user message, got %q", name, UserMessage(err))
		}
	}
}

func TestProviderMissingKey(t *testing.T) {
	_, err := NewOpenAI("http://127.0.0.1:1", "").Complete(context.Background(), "", "p")
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}
