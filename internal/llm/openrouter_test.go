package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		model   string
		wantErr bool
	}{
		{"default model", OpenRouterConfig{APIKey: "sk-or-test"}, defaultOpenRouterModel, false},
		{"model passed through", OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt-mini"}, "gpt-mini", false},
		{"vendor-prefixed model", OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"}, "anthropic/claude-3-haiku", false},
		{"missing key", OpenRouterConfig{Model: "openai/gpt-4o-mini"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.model {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.model)
			}
		})
	}
}

func TestOpenRouterProvider_SendsModelUnchanged(t *testing.T) {
	models := make(chan any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		models <- body["model"]
		openAICompletion(w, "Refined Question: What is the SI unit of charge?\nA) C\nB) A\nC) V\nD) J\nCORRECT_ANSWER: A", "stop")
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-4o-mini", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "Refine."}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := <-models; got != "openai/gpt-4o-mini" {
		t.Errorf("request model = %v", got)
	}
}

func TestOpenRouterProvider_ErrorsNameOpenRouter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		openAIErrorBody(w, http.StatusTooManyRequests, "rate_limit")
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "Refine."}}})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T: %v", err, err)
	}
	if rl.Provider != RefinerOpenRouter {
		t.Errorf("Provider = %q, want %q", rl.Provider, RefinerOpenRouter)
	}
}
