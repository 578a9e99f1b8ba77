// Package ratelimit enforces per-provider sliding-window quotas, tracks
// token spend and owns the single sleep point between retry attempts.
package ratelimit

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour

	// budgetWarnFraction of MaxDailyCost triggers a one-off warning.
	budgetWarnFraction = 0.8

	// costEpsilon absorbs float error when comparing spend against caps.
	costEpsilon = 1e-9

	// reservationTTL drops slots whose caller never tracked or released
	// them. It outlives the longest pipeline run.
	reservationTTL = 10 * time.Minute
)

// Limits is one provider's budget. A zero field means unlimited.
type Limits struct {
	RequestsPerMinute int     `validate:"gte=0"`
	RequestsPerDay    int     `validate:"gte=0"`
	TokensPerMinute   int     `validate:"gte=0"`
	TokensPerDay      int     `validate:"gte=0"`
	CostPerToken      float64 `validate:"gte=0"`
	MaxDailyCost      float64 `validate:"gte=0"`
}

// QuotaError reports a daily cap that is already exhausted. Retrying before
// ResetAt cannot succeed.
type QuotaError struct {
	Provider string
	Limit    string
	Used     float64
	Max      float64
	ResetAt  time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %s %.4g/%.4g, resets at %s",
		e.Provider, e.Limit, e.Used, e.Max, e.ResetAt.Format(time.RFC3339))
}

// Config configures a Limiter.
type Config struct {
	Limits  map[string]Limits
	Backoff BackoffConfig

	// Ledger stores usage. Nil uses a MemoryLedger.
	Ledger Ledger
}

// Limiter is safe for concurrent use. CheckLimit admits a call and
// reserves its request slot under one lock, so concurrent callers cannot
// all pass on the same free slot. The slot counts against the request caps
// until TrackUsage replaces it with the real record or Release returns it.
// Reservations live in process memory; a shared Ledger only sees tracked
// usage.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]Limits
	ledger  Ledger
	pending map[string][]time.Time
	warned  map[string]bool
	backoff BackoffConfig
	logger  zerolog.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	jit   func() float64
}

// New returns a Limiter for cfg.
func New(cfg Config, logger zerolog.Logger) *Limiter {
	ledger := cfg.Ledger
	if ledger == nil {
		ledger = NewMemoryLedger(0)
	}
	limits := make(map[string]Limits, len(cfg.Limits))
	for k, v := range cfg.Limits {
		limits[k] = v
	}
	return &Limiter{
		limits:  limits,
		ledger:  ledger,
		pending: make(map[string][]time.Time),
		warned:  make(map[string]bool),
		backoff: cfg.Backoff,
		logger:  logger.With().Str("component", "ratelimit").Logger(),
		now:     time.Now,
		sleep:   sleepContext,
		jit:     randomFraction,
	}
}

// Providers returns the configured provider names, sorted.
func (l *Limiter) Providers() []string {
	names := make([]string, 0, len(l.limits))
	for k := range l.limits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Limits returns the budget configured for provider.
func (l *Limiter) Limits(provider string) (Limits, bool) {
	lim, ok := l.limits[provider]
	return lim, ok
}

// CheckLimit admits one call to provider and reserves its slot. It fails
// with a *QuotaError when a daily cap is already met, and blocks until the
// oldest counted entry leaves the minute window when a per-minute cap is
// met. Every admitted call must be followed by TrackUsage or Release.
// Unknown providers are unlimited and reserve nothing.
func (l *Limiter) CheckLimit(ctx context.Context, provider string) (bool, error) {
	lim, ok := l.limits[provider]
	if !ok {
		return true, nil
	}

	for {
		wait, err := l.evaluate(ctx, provider, lim)
		if err != nil {
			return false, err
		}
		if wait <= 0 {
			return true, nil
		}

		l.logger.Debug().
			Str("provider", provider).
			Dur("wait", wait).
			Msg("per-minute limit reached, waiting")

		if err := l.sleep(ctx, wait); err != nil {
			return false, err
		}
	}
}

// evaluate prunes the log and returns how long the caller must wait, or a
// *QuotaError when a daily cap is met. A zero wait reserves a slot.
func (l *Limiter) evaluate(ctx context.Context, provider string, lim Limits) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	dayStart := now.Add(-dayWindow)
	if err := l.ledger.Prune(ctx, provider, dayStart); err != nil {
		return 0, err
	}
	tracked, err := l.ledger.Since(ctx, provider, dayStart)
	if err != nil {
		return 0, err
	}
	recs := l.withPending(provider, tracked, now)

	day := summarize(recs)
	resetAt := now
	if len(recs) > 0 {
		resetAt = recs[0].Time.Add(dayWindow)
	}

	switch {
	case lim.MaxDailyCost > 0 && day.cost >= lim.MaxDailyCost-costEpsilon:
		return 0, &QuotaError{Provider: provider, Limit: "daily cost", Used: day.cost, Max: lim.MaxDailyCost, ResetAt: resetAt}
	case lim.RequestsPerDay > 0 && day.requests >= lim.RequestsPerDay:
		return 0, &QuotaError{Provider: provider, Limit: "daily requests", Used: float64(day.requests), Max: float64(lim.RequestsPerDay), ResetAt: resetAt}
	case lim.TokensPerDay > 0 && day.tokens >= lim.TokensPerDay:
		return 0, &QuotaError{Provider: provider, Limit: "daily tokens", Used: float64(day.tokens), Max: float64(lim.TokensPerDay), ResetAt: resetAt}
	}

	minute := withinWindow(recs, now.Add(-minuteWindow))
	var wait time.Duration

	if lim.RequestsPerMinute > 0 && len(minute) >= lim.RequestsPerMinute {
		// Enough entries must expire to get below the cap.
		oldest := minute[len(minute)-lim.RequestsPerMinute]
		wait = oldest.Time.Add(minuteWindow).Sub(now)
	}

	if lim.TokensPerMinute > 0 {
		tokens := summarize(minute).tokens
		for _, r := range minute {
			if tokens < lim.TokensPerMinute {
				break
			}
			tokens -= r.Tokens
			wait = max(wait, r.Time.Add(minuteWindow).Sub(now))
		}
	}

	if wait <= 0 {
		l.pending[provider] = append(l.pending[provider], now)
	}
	return wait, nil
}

// withPending merges provider's live reservations into recs as zero-token
// records. Expired reservations are dropped. Callers hold l.mu.
func (l *Limiter) withPending(provider string, recs []Record, now time.Time) []Record {
	slots := l.pending[provider]
	live := slots[:0]
	for _, t := range slots {
		if now.Sub(t) < reservationTTL {
			live = append(live, t)
		}
	}
	l.pending[provider] = live
	if len(live) == 0 {
		return recs
	}

	out := make([]Record, 0, len(recs)+len(live))
	out = append(out, recs...)
	for _, t := range live {
		out = append(out, Record{Time: t})
	}
	slices.SortStableFunc(out, func(a, b Record) int { return a.Time.Compare(b.Time) })
	return out
}

// settle drops provider's oldest reservation. Callers hold l.mu.
func (l *Limiter) settle(provider string) {
	if slots := l.pending[provider]; len(slots) > 0 {
		l.pending[provider] = slots[1:]
	}
}

// Release returns a slot reserved by CheckLimit for a call that was not
// made or failed without consuming quota.
func (l *Limiter) Release(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settle(provider)
}

// TrackUsage records a completed call and its cost, settling the slot
// CheckLimit reserved for it. It logs one warning each time daily spend
// crosses 80% of the provider's budget.
func (l *Limiter) TrackUsage(ctx context.Context, provider string, tokens int) error {
	lim := l.limits[provider]

	l.mu.Lock()
	defer l.mu.Unlock()

	l.settle(provider)
	now := l.now()
	rec := Record{Time: now, Tokens: tokens, Cost: float64(tokens) * lim.CostPerToken}
	if err := l.ledger.Append(ctx, provider, rec); err != nil {
		return err
	}

	if lim.MaxDailyCost <= 0 {
		return nil
	}
	recs, err := l.ledger.Since(ctx, provider, now.Add(-dayWindow))
	if err != nil {
		return err
	}
	spent := summarize(recs).cost
	if spent >= lim.MaxDailyCost*budgetWarnFraction {
		if !l.warned[provider] {
			l.warned[provider] = true
			l.logger.Warn().
				Str("provider", provider).
				Float64("spent", spent).
				Float64("budget", lim.MaxDailyCost).
				Msg("daily cost above 80% of budget")
		}
	} else {
		l.warned[provider] = false
	}
	return nil
}

// Window is used versus allowed for a counter. A zero limit is unlimited.
type Window struct {
	Minute      int `json:"minute"`
	MinuteLimit int `json:"minute_limit"`
	Day         int `json:"day"`
	DayLimit    int `json:"day_limit"`
}

// QuotaStatus is a provider's current consumption.
type QuotaStatus struct {
	Provider  string    `json:"provider"`
	Requests  Window    `json:"requests"`
	Tokens    Window    `json:"tokens"`
	Cost      float64   `json:"cost"`
	CostLimit float64   `json:"cost_limit"`
	InFlight  int       `json:"in_flight"`
	NextReset time.Time `json:"next_reset"`
}

// Status reports provider's tracked usage in the current windows and the
// number of admitted calls not yet tracked.
func (l *Limiter) Status(ctx context.Context, provider string) (QuotaStatus, error) {
	lim := l.limits[provider]
	now := l.now()

	recs, err := l.ledger.Since(ctx, provider, now.Add(-dayWindow))
	if err != nil {
		return QuotaStatus{}, err
	}

	l.mu.Lock()
	inFlight := len(l.pending[provider])
	l.mu.Unlock()

	day := summarize(recs)
	minute := summarize(withinWindow(recs, now.Add(-minuteWindow)))

	st := QuotaStatus{
		Provider: provider,
		Requests: Window{
			Minute: minute.requests, MinuteLimit: lim.RequestsPerMinute,
			Day: day.requests, DayLimit: lim.RequestsPerDay,
		},
		Tokens: Window{
			Minute: minute.tokens, MinuteLimit: lim.TokensPerMinute,
			Day: day.tokens, DayLimit: lim.TokensPerDay,
		},
		Cost:      day.cost,
		CostLimit: lim.MaxDailyCost,
		InFlight:  inFlight,
		NextReset: now,
	}
	if len(recs) > 0 {
		st.NextReset = recs[0].Time.Add(dayWindow)
	}
	return st, nil
}

type totals struct {
	requests int
	tokens   int
	cost     float64
}

func summarize(recs []Record) totals {
	var t totals
	for _, r := range recs {
		t.requests++
		t.tokens += r.Tokens
		t.cost += r.Cost
	}
	return t
}

// withinWindow returns the suffix of recs at or after start.
func withinWindow(recs []Record, start time.Time) []Record {
	i, _ := slices.BinarySearchFunc(recs, start, func(r Record, t time.Time) int {
		return r.Time.Compare(t)
	})
	return recs[i:]
}
