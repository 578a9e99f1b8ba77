// Package monitoring records generation outcomes and pipeline errors in
// bounded in-memory buffers and derives aggregate metrics and health
// indicators from them.
package monitoring

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/ring"
)

const (
	DefaultCapacity = 1000
	DefaultWindow   = 24 * time.Hour

	// indicatorWindow is the recent period health indicators look at.
	indicatorWindow = time.Hour
)

// Outcome is the terminal result of one GenerateQuestion call.
type Outcome struct {
	Timestamp           time.Time
	QuestionID          string
	Topic               string
	Difficulty          question.Difficulty
	Success             bool
	Fallback            bool
	RefinementAttempted bool
	RefinementApplied   bool
	QualityScore        int
	Attempts            int
	Duration            time.Duration

	// Set on failure.
	ErrorKind failure.Kind
	Stage     failure.Stage
}

// ErrorRecord is one classified error seen by the pipeline, including
// errors that were later recovered by a retry or fallback.
type ErrorRecord struct {
	Timestamp time.Time
	Kind      failure.Kind
	Stage     failure.Stage
	Code      string
	Message   string
}

// Sink persists records outside the process. Sink errors are logged and
// never fail the pipeline.
type Sink interface {
	SaveOutcome(ctx context.Context, o Outcome) error
	SaveError(ctx context.Context, e ErrorRecord) error
}

// Config configures a Service.
type Config struct {
	Capacity int
	Window   time.Duration
}

// Service is the explicitly constructed metrics store injected into the
// orchestrator. It is safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	outcomes *ring.Buffer[Outcome]
	errors   *ring.Buffer[ErrorRecord]
	window   time.Duration

	sink   Sink
	logger zerolog.Logger
	now    func() time.Time
}

// NewService returns an empty Service.
func NewService(cfg Config, logger zerolog.Logger) *Service {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &Service{
		outcomes: ring.New[Outcome](cfg.Capacity),
		errors:   ring.New[ErrorRecord](cfg.Capacity),
		window:   cfg.Window,
		logger:   logger.With().Str("component", "monitoring").Logger(),
		now:      time.Now,
	}
}

// SetSink attaches a persistent sink. Call before the service is shared.
func (s *Service) SetSink(sink Sink) { s.sink = sink }

// RecordGeneration stores o. A zero Timestamp is set to now.
func (s *Service) RecordGeneration(ctx context.Context, o Outcome) {
	if o.Timestamp.IsZero() {
		o.Timestamp = s.now()
	}

	s.mu.Lock()
	s.outcomes.Push(o)
	s.mu.Unlock()

	s.logger.Debug().
		Str("topic", o.Topic).
		Bool("success", o.Success).
		Bool("fallback", o.Fallback).
		Dur("duration", o.Duration).
		Msg("generation recorded")

	if s.sink != nil {
		if err := s.sink.SaveOutcome(ctx, o); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist generation outcome")
		}
	}
}

// RecordError stores a classified error.
func (s *Service) RecordError(ctx context.Context, fe *failure.Error) {
	if fe == nil {
		return
	}
	rec := ErrorRecord{
		Timestamp: s.now(),
		Kind:      fe.Kind,
		Stage:     fe.Stage,
		Code:      fe.Code,
		Message:   fe.Message,
	}

	s.mu.Lock()
	s.errors.Push(rec)
	s.mu.Unlock()

	if s.sink != nil {
		if err := s.sink.SaveError(ctx, rec); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist error record")
		}
	}
}

// Reset drops everything recorded so far.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes.Reset()
	s.errors.Reset()
}

// TopicMetrics aggregates outcomes for one topic.
type TopicMetrics struct {
	Total               int     `json:"total"`
	Successful          int     `json:"successful"`
	SuccessRate         float64 `json:"success_rate"`
	AverageQualityScore float64 `json:"average_quality_score"`
}

// Metrics aggregates outcomes within the retention window.
type Metrics struct {
	TotalGenerations      int                     `json:"total_generations"`
	Successful            int                     `json:"successful"`
	Failed                int                     `json:"failed"`
	SuccessRate           float64                 `json:"success_rate"`
	AverageProcessingTime time.Duration           `json:"average_processing_time"`
	AverageQualityScore   float64                 `json:"average_quality_score"`
	FallbackRate          float64                 `json:"fallback_rate"`
	RefinementRate        float64                 `json:"refinement_rate"`
	ErrorsByKind          map[failure.Kind]int    `json:"errors_by_kind"`
	Topics                map[string]TopicMetrics `json:"topics"`
	Window                time.Duration           `json:"window"`
}

// TopicNames returns the topics present in m, sorted.
func (m Metrics) TopicNames() []string {
	names := make([]string, 0, len(m.Topics))
	for k := range m.Topics {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *Service) recent(window time.Duration) ([]Outcome, []ErrorRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-window)
	outs := ring.Since(s.outcomes.Snapshot(), cutoff, func(o Outcome) time.Time { return o.Timestamp })
	errs := ring.Since(s.errors.Snapshot(), cutoff, func(e ErrorRecord) time.Time { return e.Timestamp })
	return outs, errs
}

// Metrics computes aggregate metrics over the retention window.
func (s *Service) Metrics() Metrics {
	outs, errs := s.recent(s.window)

	m := Metrics{
		ErrorsByKind: make(map[failure.Kind]int),
		Topics:       make(map[string]TopicMetrics),
		Window:       s.window,
	}
	for _, e := range errs {
		m.ErrorsByKind[e.Kind]++
	}

	var totalTime time.Duration
	var qualitySum, qualityN, fallbacks, refined int
	topicQuality := make(map[string]int)

	for _, o := range outs {
		m.TotalGenerations++
		totalTime += o.Duration

		tm := m.Topics[o.Topic]
		tm.Total++
		if o.Success {
			m.Successful++
			tm.Successful++
			qualitySum += o.QualityScore
			qualityN++
			topicQuality[o.Topic] += o.QualityScore
		} else {
			m.Failed++
		}
		if o.Fallback {
			fallbacks++
		}
		if o.RefinementApplied {
			refined++
		}
		m.Topics[o.Topic] = tm
	}

	if m.TotalGenerations == 0 {
		return m
	}
	n := float64(m.TotalGenerations)
	m.SuccessRate = float64(m.Successful) / n
	m.AverageProcessingTime = totalTime / time.Duration(m.TotalGenerations)
	m.FallbackRate = float64(fallbacks) / n
	m.RefinementRate = float64(refined) / n
	if qualityN > 0 {
		m.AverageQualityScore = float64(qualitySum) / float64(qualityN)
	}
	for topic, tm := range m.Topics {
		tm.SuccessRate = float64(tm.Successful) / float64(tm.Total)
		if tm.Successful > 0 {
			tm.AverageQualityScore = float64(topicQuality[topic]) / float64(tm.Successful)
		}
		m.Topics[topic] = tm
	}
	return m
}
