package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeGeneration)
	if p := PurposeFrom(ctx); p != PurposeGeneration {
		t.Fatalf("expected 'generation', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	lit := LITConfig{URL: "http://localhost:5432/generate"}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "lit without url",
			cfg:     Config{Generator: "lit", Refiner: RefinerNone},
			wantErr: true,
		},
		{
			name:    "lit with url, no refiner",
			cfg:     Config{Generator: "lit", LIT: lit, Refiner: RefinerNone},
			wantErr: false,
		},
		{
			name:    "openrouter without key",
			cfg:     Config{Generator: "lit", LIT: lit, Refiner: RefinerOpenRouter},
			wantErr: true,
		},
		{
			name:    "openrouter with key",
			cfg:     Config{Generator: "lit", LIT: lit, Refiner: RefinerOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "sk-or"}},
			wantErr: false,
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Generator: "mock", Refiner: RefinerAnthropic},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Generator: "mock", Refiner: RefinerAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs nothing",
			cfg:     Config{Generator: "mock", Refiner: RefinerMock},
			wantErr: false,
		},
		{
			name:    "unknown generator",
			cfg:     Config{Generator: "gpt2", Refiner: RefinerNone},
			wantErr: true,
		},
		{
			name:    "unknown refiner",
			cfg:     Config{Generator: "mock", Refiner: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PHYSIQ_LIT_URL", "http://lit.internal/generate")
	t.Setenv("PHYSIQ_LIT_TIMEOUT", "45s")
	t.Setenv("PHYSIQ_REFINER", "gemini")
	t.Setenv("PHYSIQ_GEMINI_API_KEY", "g-key")

	cfg := ConfigFromEnv()
	if cfg.LIT.URL != "http://lit.internal/generate" || cfg.LIT.Timeout != 45*time.Second {
		t.Errorf("LIT = %+v", cfg.LIT)
	}
	if cfg.Refiner != RefinerGemini || cfg.Gemini.APIKey != "g-key" {
		t.Errorf("refiner = %q key = %q", cfg.Refiner, cfg.Gemini.APIKey)
	}
	if cfg.LIT.MaxNewTokens != 500 || cfg.OpenRouter.Model != "openai/gpt-4o-mini" {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDiscoverRefiner(t *testing.T) {
	for _, k := range []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := DefaultConfig()
	if !DiscoverRefiner(&cfg) {
		t.Fatal("expected a refiner to be discovered")
	}
	if cfg.Refiner != RefinerAnthropic || cfg.Anthropic.APIKey != "sk-ant" {
		t.Errorf("refiner = %q", cfg.Refiner)
	}

	cfg = DefaultConfig()
	cfg.OpenRouter.APIKey = "explicit"
	DiscoverRefiner(&cfg)
	if cfg.Refiner != RefinerOpenRouter {
		t.Errorf("explicit key should win, got %q", cfg.Refiner)
	}
}

func TestMockProvider_Repeating(t *testing.T) {
	mock := NewRepeatingMockProvider(MockText("same"))
	for range 3 {
		resp, err := mock.Generate(context.Background(), Request{})
		if err != nil || resp.Text() != "same" {
			t.Fatalf("got %v, %v", resp, err)
		}
	}
}

func TestMockProvider_DelayHonoursContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("late"), Delay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mock.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLookupCost(t *testing.T) {
	if c := LookupCost("openai/gpt-4o-mini"); c == nil || c.InputPerMTok != 0.15 {
		t.Fatalf("LookupCost(openai/gpt-4o-mini) = %v", c)
	}
	if LookupCost("llama-ib-physics") != nil {
		t.Error("self-hosted model should have no price")
	}
	if got := CostPerToken("gpt-4o-mini", 0); math.Abs(got-0.375/1_000_000) > 1e-15 {
		t.Errorf("CostPerToken = %g", got)
	}
	if got := CostPerToken("unknown", 0.5); got != 0.5 {
		t.Errorf("fallback = %g", got)
	}
}
