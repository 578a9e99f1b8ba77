package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/physiq/internal/failure"
)

func newTestService(capacity int) (*Service, *time.Time) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewService(Config{Capacity: capacity}, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMetrics_Aggregates(t *testing.T) {
	s, _ := newTestService(0)
	ctx := context.Background()

	s.RecordGeneration(ctx, Outcome{Topic: "kinematics", Success: true, RefinementApplied: true, QualityScore: 90, Duration: 2 * time.Second})
	s.RecordGeneration(ctx, Outcome{Topic: "kinematics", Success: true, Fallback: true, QualityScore: 70, Duration: 4 * time.Second})
	s.RecordGeneration(ctx, Outcome{Topic: "gas-laws", Success: false, ErrorKind: failure.KindValidation, Duration: 6 * time.Second})
	s.RecordError(ctx, failure.New(failure.KindValidation, failure.StageRawValidation, "bad format"))
	s.RecordError(ctx, failure.New(failure.KindGeneration, failure.StageGeneration, "timeout"))
	s.RecordError(ctx, failure.New(failure.KindGeneration, failure.StageGeneration, "timeout"))

	m := s.Metrics()
	assert.Equal(t, 3, m.TotalGenerations)
	assert.Equal(t, 2, m.Successful)
	assert.Equal(t, 1, m.Failed)
	assert.InDelta(t, 2.0/3, m.SuccessRate, 1e-9)
	assert.Equal(t, 4*time.Second, m.AverageProcessingTime)
	assert.InDelta(t, 80, m.AverageQualityScore, 1e-9)
	assert.InDelta(t, 1.0/3, m.FallbackRate, 1e-9)
	assert.InDelta(t, 1.0/3, m.RefinementRate, 1e-9)
	assert.Equal(t, 2, m.ErrorsByKind[failure.KindGeneration])
	assert.Equal(t, 1, m.ErrorsByKind[failure.KindValidation])

	require.Equal(t, []string{"gas-laws", "kinematics"}, m.TopicNames())
	k := m.Topics["kinematics"]
	assert.Equal(t, 2, k.Total)
	assert.InDelta(t, 1.0, k.SuccessRate, 1e-9)
	assert.InDelta(t, 80, k.AverageQualityScore, 1e-9)
	assert.InDelta(t, 0, m.Topics["gas-laws"].SuccessRate, 1e-9)
}

func TestMetrics_Empty(t *testing.T) {
	s, _ := newTestService(0)
	m := s.Metrics()
	assert.Zero(t, m.TotalGenerations)
	assert.Zero(t, m.SuccessRate)
	assert.Empty(t, m.Topics)
}

func TestMetrics_WindowAndCapacity(t *testing.T) {
	s, now := newTestService(3)
	ctx := context.Background()

	s.RecordGeneration(ctx, Outcome{Topic: "old", Success: true})
	*now = now.Add(25 * time.Hour)
	assert.Zero(t, s.Metrics().TotalGenerations, "outcomes older than 24h are ignored")

	for range 5 {
		s.RecordGeneration(ctx, Outcome{Topic: "kinematics", Success: true})
	}
	assert.Equal(t, 3, s.Metrics().TotalGenerations, "capacity caps retained outcomes")

	s.Reset()
	assert.Zero(t, s.Metrics().TotalGenerations)
}

func TestIndicators(t *testing.T) {
	s, now := newTestService(0)
	ctx := context.Background()

	for _, ind := range s.Indicators() {
		assert.Equal(t, StatusHealthy, ind.Status, ind.Name)
	}

	// Two hours ago: outside the indicator window.
	s.RecordGeneration(ctx, Outcome{Timestamp: now.Add(-2 * time.Hour), Success: false, Duration: time.Minute})

	s.RecordGeneration(ctx, Outcome{Success: true, Duration: 40 * time.Second})
	s.RecordGeneration(ctx, Outcome{Success: false, Duration: 50 * time.Second})
	s.RecordGeneration(ctx, Outcome{Success: true, Fallback: true, Duration: 120 * time.Second})

	byName := map[string]Indicator{}
	for _, ind := range s.Indicators() {
		byName[ind.Name] = ind
	}
	assert.Equal(t, StatusDegraded, byName["success_rate"].Status)
	assert.InDelta(t, 2.0/3, byName["success_rate"].Value, 1e-9)
	assert.Equal(t, StatusUnhealthy, byName["average_latency"].Status)
	assert.InDelta(t, 70, byName["average_latency"].Value, 1e-9)
	assert.Equal(t, StatusUnhealthy, byName["fallback_rate"].Status)
	assert.Contains(t, byName["success_rate"].Detail, "2 of 3")
}

func TestOverall(t *testing.T) {
	assert.Equal(t, StatusHealthy, Overall(StatusHealthy, StatusHealthy))
	assert.Equal(t, StatusDegraded, Overall(StatusHealthy, StatusUnhealthy))
	assert.Equal(t, StatusUnhealthy, Overall(StatusUnhealthy, StatusDegraded))
	assert.Equal(t, StatusHealthy, Overall())
}

type recordingSink struct {
	mu       sync.Mutex
	outcomes []Outcome
	errs     []ErrorRecord
	fail     bool
}

func (r *recordingSink) SaveOutcome(_ context.Context, o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	r.outcomes = append(r.outcomes, o)
	return nil
}

func (r *recordingSink) SaveError(_ context.Context, e ErrorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	r.errs = append(r.errs, e)
	return nil
}

func TestSink(t *testing.T) {
	s, now := newTestService(0)
	sink := &recordingSink{}
	s.SetSink(sink)
	ctx := context.Background()

	s.RecordGeneration(ctx, Outcome{Topic: "kinematics", Success: true})
	s.RecordError(ctx, failure.New(failure.KindQuota, failure.StageGeneration, "over budget"))
	s.RecordError(ctx, nil)

	require.Len(t, sink.outcomes, 1)
	assert.Equal(t, *now, sink.outcomes[0].Timestamp)
	require.Len(t, sink.errs, 1)
	assert.Equal(t, "QUOTA_EXCEEDED", sink.errs[0].Code)

	// Sink failures do not drop in-memory records.
	sink.fail = true
	s.RecordGeneration(ctx, Outcome{Topic: "kinematics", Success: true})
	assert.Equal(t, 2, s.Metrics().TotalGenerations)
}

func TestConcurrentRecording(t *testing.T) {
	s := NewService(Config{}, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordGeneration(ctx, Outcome{Topic: "waves", Success: true})
			_ = s.Metrics()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, s.Metrics().TotalGenerations)
}
