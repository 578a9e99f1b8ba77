package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/physiq/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event
// and a structured log line.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    zerolog.Logger
}

// WithLogging wraps a Provider with event logging. repo may be nil, in which
// case only the log line is written.
func WithLogging(p Provider, repo store.EventRepo, logger zerolog.Logger) Provider {
	return &LoggingProvider{
		inner:     p,
		eventRepo: repo,
		logger:    logger.With().Str("component", "llm").Logger(),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Timestamp:   start,
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	ev := l.logger.Debug()
	if err != nil {
		ev = l.logger.Warn().Err(err)
	}
	ev.Str("purpose", purpose).
		Str("model", data.Model).
		Int("input_tokens", data.InputTokens).
		Int("output_tokens", data.OutputTokens).
		Int64("latency_ms", latencyMs).
		Msg("llm request")

	// Log the event but don't fail the request if logging fails. The
	// request context may already be cancelled, so the write gets its own.
	if l.eventRepo != nil {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if logErr := l.eventRepo.AppendLLMRequest(writeCtx, data); logErr != nil {
			l.logger.Warn().Err(logErr).Msg("failed to log LLM request event")
		}
		cancel()
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// Ping forwards to the wrapped provider. It returns ErrPingUnsupported
// when that provider cannot be pinged.
func (l *LoggingProvider) Ping(ctx context.Context) error {
	p, ok := l.inner.(Pinger)
	if !ok {
		return ErrPingUnsupported
	}
	start := time.Now()
	err := p.Ping(WithPurpose(ctx, PurposeHealthCheck))

	ev := l.logger.Debug()
	if err != nil {
		ev = l.logger.Warn().Err(err)
	}
	ev.Str("purpose", PurposeHealthCheck).
		Str("model", l.inner.ModelID()).
		Dur("latency", time.Since(start)).
		Msg("llm ping")
	return err
}

// Unwrap returns the decorated provider.
func (l *LoggingProvider) Unwrap() Provider {
	return l.inner
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
