// Package question defines the question artifacts that flow through the
// generation pipeline, from the raw candidate parsed out of the generation
// model's text to the finished question handed back to the caller.
package question

import (
	"strings"
	"time"
)

// OptionCount is the number of options every multiple-choice question carries.
const OptionCount = 4

// Letter identifies one of the four options.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
)

// Letters returns the option letters in display order.
func Letters() []Letter {
	return []Letter{LetterA, LetterB, LetterC, LetterD}
}

// ParseLetter normalizes s ("b", " C ", "(D)") to a Letter.
func ParseLetter(s string) (Letter, bool) {
	s = strings.Trim(strings.TrimSpace(s), "()[].:")
	switch strings.ToUpper(s) {
	case "A":
		return LetterA, true
	case "B":
		return LetterB, true
	case "C":
		return LetterC, true
	case "D":
		return LetterD, true
	}
	return "", false
}

// Valid reports whether l is exactly one of A-D. Lowercase letters are not
// valid; normalize them with ParseLetter first.
func (l Letter) Valid() bool {
	return l.Index() >= 0
}

// Index returns the zero-based option index for l, or -1 if l is invalid.
func (l Letter) Index() int {
	switch l {
	case LetterA:
		return 0
	case LetterB:
		return 1
	case LetterC:
		return 2
	case LetterD:
		return 3
	}
	return -1
}

// Difficulty is the requested curriculum level.
type Difficulty string

const (
	DifficultyStandard Difficulty = "standard"
	DifficultyHigher   Difficulty = "higher"
)

// Type is the requested question style.
type Type string

const (
	TypeMultipleChoice Type = "multiple-choice"
	TypeLongAnswer     Type = "long-answer"
)

// ValidationStatus is the refinement model's verdict on a raw question.
type ValidationStatus string

const (
	StatusValid     ValidationStatus = "valid"
	StatusCorrected ValidationStatus = "corrected"
	StatusRejected  ValidationStatus = "rejected"
)

// RawQuestion is an unvalidated candidate parsed from the generation model's
// output. It is produced once per generation attempt and never mutated.
type RawQuestion struct {
	Text            string
	Options         []string
	SuggestedAnswer Letter

	// Confidence is the parser's heuristic confidence in [0, 1].
	Confidence float64

	Topic string
}

// RefinedQuestion is a candidate after the refinement model rewrote or
// corrected it. It supersedes the RawQuestion for the rest of the pipeline.
type RefinedQuestion struct {
	Text             string
	Options          []string
	CorrectAnswer    Letter
	Improvements     []string
	ValidationStatus ValidationStatus
	Topic            string

	// Explanation is set when the refinement model returned one.
	Explanation string
}

// FromRaw promotes a raw question unchanged. Used when refinement is
// disabled or its output is discarded.
func FromRaw(raw RawQuestion) RefinedQuestion {
	return RefinedQuestion{
		Text:             raw.Text,
		Options:          append([]string(nil), raw.Options...),
		CorrectAnswer:    raw.SuggestedAnswer,
		ValidationStatus: StatusValid,
		Topic:            raw.Topic,
	}
}

// Metadata records how a GeneratedQuestion was produced.
type Metadata struct {
	GenerationModel     string        `json:"generation_model"`
	RefinementModel     string        `json:"refinement_model,omitempty"`
	ProcessingTime      time.Duration `json:"processing_time"`
	RefinementApplied   bool          `json:"refinement_applied"`
	RefinementAttempted bool          `json:"refinement_attempted"`
	ValidationPassed    bool          `json:"validation_passed"`
	QualityScore        int           `json:"quality_score"`
	Fallback            bool          `json:"fallback"`
	Attempts            int           `json:"attempts"`

	// Notes are pipeline annotations such as "refinement_failed".
	Notes []string `json:"notes,omitempty"`
}

// Annotations recorded in Metadata.Notes.
const (
	NoteRefinementDisabled         = "refinement_disabled"
	NoteRefinementFailed           = "refinement_failed"
	NoteRefinementValidationFailed = "refinement_validation_failed"
	NoteStaticFallback             = "static_fallback"
	NoteValidationDisabled         = "validation_disabled"
)

// GeneratedQuestion is the terminal artifact of the pipeline. It is built
// exactly once and owned by the caller after it is returned.
type GeneratedQuestion struct {
	ID            string     `json:"id"`
	Topic         string     `json:"topic"`
	Text          string     `json:"question_text"`
	Options       []string   `json:"options"`
	CorrectAnswer Letter     `json:"correct_answer"`
	Explanation   string     `json:"explanation,omitempty"`
	Metadata      Metadata   `json:"metadata"`
	Type          Type       `json:"type"`
	Difficulty    Difficulty `json:"difficulty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasNote reports whether the metadata carries the given annotation.
func (m Metadata) HasNote(note string) bool {
	for _, n := range m.Notes {
		if n == note {
			return true
		}
	}
	return false
}
