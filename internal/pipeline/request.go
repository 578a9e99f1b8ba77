package pipeline

import (
	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/topics"
	"github.com/abhisek/physiq/internal/validator"
)

// Request asks for one question.
type Request struct {
	Topic      string              `json:"topic" validate:"required"`
	Difficulty question.Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=standard higher"`
	Type       question.Type       `json:"type,omitempty" validate:"omitempty,oneof=multiple-choice long-answer"`
}

// normalize validates r, fills in defaults and resolves the topic.
func (r Request) normalize() (Request, topics.Topic, *failure.Error) {
	if err := validator.Struct(r); err != nil {
		return r, topics.Topic{}, failure.Wrap(failure.KindValidation, failure.SubKindNone, failure.StageInitialization, err).NonRetryable()
	}
	t, err := topics.Get(r.Topic)
	if err != nil {
		return r, topics.Topic{}, failure.Wrap(failure.KindValidation, failure.SubKindNone, failure.StageInitialization, err).
			With("topic", r.Topic).
			NonRetryable()
	}
	if r.Difficulty == "" {
		r.Difficulty = question.DifficultyStandard
	}
	if r.Type == "" {
		r.Type = question.TypeMultipleChoice
	}
	return r, t, nil
}
