package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultLITMaxNewTokens = 500
	defaultLITTemperature  = 0.7
	defaultLITTopP         = 0.9
	defaultLITTimeout      = 30 * time.Second

	// maxLITBody caps how much of a reply is read.
	maxLITBody = 1 << 20

	litProviderName = "lit"
)

// LITProvider calls a self-hosted fine-tuned text-generation endpoint that
// takes {inputs, max_new_tokens, temperature, top_p}. The reply body is
// returned unmodified; callers unwrap any JSON envelope themselves.
type LITProvider struct {
	client    *http.Client
	url       string
	healthURL string
	apiKey    string
	model     string

	maxNewTokens int
	temperature  float64
	topP         float64
}

// NewLITProvider creates a provider for cfg.URL.
func NewLITProvider(cfg LITConfig) (*LITProvider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("LIT endpoint URL is required")
	}

	p := &LITProvider{
		client:       &http.Client{Timeout: cfg.Timeout},
		url:          cfg.URL,
		healthURL:    cfg.HealthURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		maxNewTokens: cfg.MaxNewTokens,
		temperature:  cfg.Temperature,
		topP:         cfg.TopP,
	}
	if p.client.Timeout <= 0 {
		p.client.Timeout = defaultLITTimeout
	}
	if p.healthURL == "" {
		p.healthURL = cfg.URL
	}
	if p.model == "" {
		p.model = "lit"
	}
	if p.maxNewTokens <= 0 {
		p.maxNewTokens = defaultLITMaxNewTokens
	}
	if p.temperature <= 0 {
		p.temperature = defaultLITTemperature
	}
	if p.topP <= 0 {
		p.topP = defaultLITTopP
	}
	return p, nil
}

type litRequest struct {
	Inputs       string  `json:"inputs"`
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
}

func (p *LITProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	prompt := flattenPrompt(req)

	payload := litRequest{
		Inputs:       prompt,
		MaxNewTokens: p.maxNewTokens,
		Temperature:  p.temperature,
		TopP:         p.topP,
	}
	if req.MaxTokens > 0 {
		payload.MaxNewTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		payload.Temperature = req.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal LIT request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build LIT request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrProviderUnavailable{Provider: litProviderName, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLITBody))
	if err != nil {
		return nil, &ErrProviderUnavailable{Provider: litProviderName, Err: fmt.Errorf("read LIT response: %w", err)}
	}

	if err := mapLITStatus(resp, raw); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty LIT response")}
	}

	in, out := estimateTokens(prompt), estimateTokens(text)
	return &Response{
		Content:    json.RawMessage(text),
		Usage:      Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
		Model:      p.model,
		StopReason: "end",
	}, nil
}

func (p *LITProvider) ModelID() string {
	return p.model
}

// Ping reports whether the endpoint is reachable. Any status below 500
// counts as up.
func (p *LITProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return &ErrProviderUnavailable{Provider: litProviderName, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxLITBody))

	if resp.StatusCode >= 500 {
		return &ErrProviderUnavailable{Provider: litProviderName, Err: &StatusError{Code: resp.StatusCode}}
	}
	return nil
}

func mapLITStatus(resp *http.Response, raw []byte) error {
	if resp.StatusCode < 300 {
		return nil
	}
	se := &StatusError{Code: resp.StatusCode, Body: snippet(string(raw), 200)}
	if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests &&
		resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return se
	}
	return fromStatus(litProviderName, resp.StatusCode, retryAfterHeader(resp), se)
}

// flattenPrompt joins the system prompt and user turns into one input.
func flattenPrompt(req Request) string {
	parts := make([]string, 0, len(req.Messages)+1)
	if req.System != "" {
		parts = append(parts, req.System)
	}
	for _, m := range req.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// estimateTokens approximates a token count at four characters per token.
func estimateTokens(s string) int {
	n := len(s) / 4
	if n == 0 && s != "" {
		n = 1
	}
	return n
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
