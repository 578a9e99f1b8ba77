package app

import (
	"context"

	"github.com/abhisek/physiq/internal/monitoring"
	"github.com/abhisek/physiq/internal/store"
)

// StoreSink persists monitoring records to the event store.
type StoreSink struct {
	repo store.EventRepo
}

var _ monitoring.Sink = (*StoreSink)(nil)

// NewStoreSink returns a sink writing to repo.
func NewStoreSink(repo store.EventRepo) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) SaveOutcome(ctx context.Context, o monitoring.Outcome) error {
	return s.repo.AppendGeneration(ctx, store.GenerationEventData{
		Timestamp:           o.Timestamp,
		QuestionID:          o.QuestionID,
		Topic:               o.Topic,
		Difficulty:          string(o.Difficulty),
		Success:             o.Success,
		Fallback:            o.Fallback,
		RefinementAttempted: o.RefinementAttempted,
		RefinementApplied:   o.RefinementApplied,
		QualityScore:        o.QualityScore,
		Attempts:            o.Attempts,
		DurationMs:          o.Duration.Milliseconds(),
		ErrorKind:           string(o.ErrorKind),
		Stage:               string(o.Stage),
	})
}

func (s *StoreSink) SaveError(ctx context.Context, e monitoring.ErrorRecord) error {
	return s.repo.AppendError(ctx, store.ErrorEventData{
		Timestamp: e.Timestamp,
		Kind:      string(e.Kind),
		Code:      e.Code,
		Stage:     string(e.Stage),
		Message:   e.Message,
	})
}
