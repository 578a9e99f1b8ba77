package ratelimit

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/physiq/internal/llm"
)

// BackoffConfig sets the base delays Backoff uses per error kind.
type BackoffConfig struct {
	RateLimit       time.Duration // provider rate limit without Retry-After
	Quota           time.Duration // daily quota exhausted
	TooManyRequests time.Duration // bare HTTP 429
	MaxJitter       time.Duration

	// Scale multiplies every delay. 0 disables sleeping entirely.
	Scale float64
}

// DefaultBackoffConfig returns the production delays.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		RateLimit:       5 * time.Second,
		Quota:           60 * time.Second,
		TooManyRequests: 10 * time.Second,
		MaxJitter:       time.Second,
		Scale:           1,
	}
}

// TestBackoffConfig never sleeps.
func TestBackoffConfig() BackoffConfig {
	cfg := DefaultBackoffConfig()
	cfg.Scale = 0
	return cfg
}

// statusCoder is implemented by transport errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Delay returns the base delay for err before jitter and scaling. Errors
// that are not rate related get otherwise.
func (c BackoffConfig) Delay(err error, otherwise time.Duration) time.Duration {
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			return rl.RetryAfter
		}
		return c.RateLimit
	}

	var qe *QuotaError
	if errors.As(err, &qe) {
		return c.Quota
	}

	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() == http.StatusTooManyRequests {
		return c.TooManyRequests
	}
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "too many requests") {
		return c.TooManyRequests
	}
	return otherwise
}

// Backoff sleeps before the next retry of a call that failed with err.
// It is the only place the pipeline sleeps between attempts.
func (l *Limiter) Backoff(ctx context.Context, err error, otherwise time.Duration) error {
	d := l.backoff.Delay(err, otherwise)
	if l.backoff.MaxJitter > 0 {
		d += time.Duration(l.jit() * float64(l.backoff.MaxJitter))
	}
	d = time.Duration(float64(d) * l.backoff.Scale)
	if d <= 0 {
		return ctx.Err()
	}

	l.logger.Debug().
		Err(err).
		Dur("delay", d).
		Msg("backing off")

	return l.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomFraction() float64 {
	return rand.Float64()
}
