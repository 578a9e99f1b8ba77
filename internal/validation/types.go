// Package validation checks candidate questions for structural integrity,
// physical plausibility and curriculum fit, and folds the three verdicts
// into a 0-100 quality score.
package validation

import (
	"fmt"
	"slices"

	"github.com/abhisek/physiq/internal/question"
)

// Severity grades an issue or warning.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue is a validation error.
type Issue struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Warning is advisory; it never invalidates a verdict on its own.
type Warning struct {
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Severity   Severity `json:"severity"`
}

// Verdict is the outcome of one validator.
type Verdict struct {
	Valid       bool      `json:"valid"`
	Errors      []Issue   `json:"errors,omitempty"`
	Warnings    []Warning `json:"warnings,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

func (v *Verdict) fail(kind string, sev Severity, format string, args ...any) {
	v.Errors = append(v.Errors, Issue{Kind: kind, Message: fmt.Sprintf(format, args...), Severity: sev})
}

func (v *Verdict) warn(kind string, sev Severity, suggestion, format string, args ...any) {
	v.Warnings = append(v.Warnings, Warning{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: suggestion,
		Severity:   sev,
	})
}

func (v *Verdict) suggest(s string) {
	if !slices.Contains(v.Suggestions, s) {
		v.Suggestions = append(v.Suggestions, s)
	}
}

// HasHigh reports whether any error is high severity.
func (v Verdict) HasHigh() bool {
	return slices.ContainsFunc(v.Errors, func(i Issue) bool { return i.Severity == SeverityHigh })
}

// Tier is the physics validator's accuracy grade.
type Tier string

const (
	TierAccurate    Tier = "accurate"
	TierMinorIssues Tier = "minor-issues"
	TierMajorErrors Tier = "major-errors"
)

// PhysicsVerdict adds the accuracy tier to a Verdict.
type PhysicsVerdict struct {
	Verdict
	Tier Tier `json:"tier"`
}

// ComplianceVerdict adds curriculum fit measurements to a Verdict.
type ComplianceVerdict struct {
	Verdict
	TopicRelevance     float64             `json:"topic_relevance"`
	InferredDifficulty question.Difficulty `json:"inferred_difficulty"`
	CommandWords       []string            `json:"command_words,omitempty"`
}

// Result merges the three verdicts while keeping each available for scoring.
type Result struct {
	Verdict
	Format     Verdict           `json:"format"`
	Physics    PhysicsVerdict    `json:"physics"`
	Compliance ComplianceVerdict `json:"compliance"`
}

// Candidate is the common view of raw and refined questions.
type Candidate struct {
	Text    string
	Options []string
	Answer  question.Letter
	Topic   string
}

// FromRaw builds a Candidate from a parsed question.
func FromRaw(q question.RawQuestion) Candidate {
	return Candidate{Text: q.Text, Options: q.Options, Answer: q.SuggestedAnswer, Topic: q.Topic}
}

// FromRefined builds a Candidate from a refined question.
func FromRefined(q question.RefinedQuestion) Candidate {
	return Candidate{Text: q.Text, Options: q.Options, Answer: q.CorrectAnswer, Topic: q.Topic}
}
