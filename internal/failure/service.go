package failure

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/physiq/internal/question"
)

const (
	// RetryWindow is how far back ShouldRetry counts same-kind errors.
	RetryWindow = 5 * time.Minute

	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// retryCaps is the number of same-kind errors tolerated inside RetryWindow.
var retryCaps = map[Kind]int{
	KindGeneration: 3,
	KindRefinement: 3,
	KindValidation: 2,
	KindQuota:      0,
}

// Config configures a Service.
type Config struct {
	LogCapacity int
	MaxJitter   time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{LogCapacity: DefaultLogCapacity, MaxJitter: time.Second}
}

// Service is the single funnel for pipeline failures.
type Service struct {
	log       *ErrorLog
	logger    zerolog.Logger
	maxJitter time.Duration

	now  func() time.Time
	jit  func() float64
	pick func(n int) int
}

// NewService returns a Service with its own error log.
func NewService(cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		log:       NewErrorLog(cfg.LogCapacity),
		logger:    logger.With().Str("component", "failure").Logger(),
		maxJitter: cfg.MaxJitter,
		now:       time.Now,
		jit:       rand.Float64,
		pick:      rand.IntN,
	}
}

// ErrorLog exposes the underlying log.
func (s *Service) ErrorLog() *ErrorLog { return s.log }

// Classify is the package-level Classify.
func (s *Service) Classify(err error, stage Stage) *Error {
	return Classify(err, stage)
}

// Log records fe in the error log with its retry count and emits a
// structured warning.
func (s *Service) Log(fe *Error, retryCount int) Entry {
	e := s.log.Append(Entry{
		Timestamp:  s.now(),
		Kind:       fe.Kind,
		Code:       fe.Code,
		Stage:      fe.Stage,
		Message:    fe.Message,
		Context:    Sanitize(fe.Context),
		RetryCount: retryCount,
	})

	ev := s.logger.Warn()
	if !fe.Retryable {
		ev = s.logger.Error()
	}
	ev.Str("kind", string(fe.Kind)).
		Str("code", fe.Code).
		Str("stage", string(fe.Stage)).
		Int("retry", retryCount).
		Bool("retryable", fe.Retryable).
		Str("error_id", e.ID).
		Msg(fe.Message)

	return e
}

// ShouldRetry reports whether another attempt is allowed after fe. It is
// false for non-retryable errors and once the number of same-kind errors
// logged within RetryWindow reaches the kind's cap.
func (s *Service) ShouldRetry(fe *Error) bool {
	if fe == nil || !fe.Retryable {
		return false
	}
	limit, ok := retryCaps[fe.Kind]
	if !ok {
		return false
	}
	return s.log.CountSince(fe.Kind, s.now().Add(-RetryWindow)) < limit
}

// RetryDelay is the exponential delay before attempt (1-based):
// min(2s·2^(attempt-1), 30s) plus up to MaxJitter of jitter.
func (s *Service) RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := maxRetryDelay
	if attempt <= 5 {
		d = min(baseRetryDelay<<(attempt-1), maxRetryDelay)
	}
	if s.maxJitter > 0 {
		d += time.Duration(s.jit() * float64(s.maxJitter))
	}
	return d
}

// FallbackQuestion picks a static question for topic at random and stamps
// its explanation with cause. Topics without bank entries get a generic
// placeholder.
func (s *Service) FallbackQuestion(topic string, cause error) question.GeneratedQuestion {
	sq := genericFallback
	if bank := fallbackBank[topic]; len(bank) > 0 {
		sq = bank[s.pick(len(bank))]
	}

	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}

	s.logger.Warn().
		Str("topic", topic).
		Str("cause", reason).
		Msg("serving static fallback question")

	return question.GeneratedQuestion{
		ID:            uuid.NewString(),
		Topic:         topic,
		Text:          sq.Text,
		Options:       sq.Options[:],
		CorrectAnswer: sq.Answer,
		Explanation:   fmt.Sprintf("%s\n\n[fallback question served after: %s]", sq.Explanation, reason),
		Metadata: question.Metadata{
			GenerationModel:  "static-fallback",
			ValidationPassed: true,
			Fallback:         true,
			Notes:            []string{question.NoteStaticFallback},
		},
		Type:       question.TypeMultipleChoice,
		Difficulty: question.DifficultyStandard,
		CreatedAt:  s.now(),
	}
}
