package validation

import (
	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/topics"
)

// Engine composes the format, physics and compliance validators.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	format     FormatValidator
	physics    PhysicsValidator
	compliance ComplianceValidator
}

// NewEngine returns an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ValidateFormat runs only the structural checks on a raw question.
func (e *Engine) ValidateFormat(raw question.RawQuestion) Verdict {
	return e.format.Validate(FromRaw(raw))
}

// ValidateRefinedQuestion runs all three validators and unions their
// findings. The per-validator verdicts stay available on the Result.
func (e *Engine) ValidateRefinedQuestion(q question.RefinedQuestion, d question.Difficulty) Result {
	return e.validate(FromRefined(q), d)
}

func (e *Engine) validate(c Candidate, d question.Difficulty) Result {
	t := topics.Lookup(c.Topic)

	r := Result{
		Format:     e.format.Validate(c),
		Physics:    e.physics.Validate(c, t),
		Compliance: e.compliance.Validate(c, t, d),
	}

	for _, v := range []Verdict{r.Format, r.Physics.Verdict, r.Compliance.Verdict} {
		r.Errors = append(r.Errors, v.Errors...)
		r.Warnings = append(r.Warnings, v.Warnings...)
		for _, s := range v.Suggestions {
			r.suggest(s)
		}
		for _, w := range v.Warnings {
			if w.Suggestion != "" {
				r.suggest(w.Suggestion)
			}
		}
	}
	r.Valid = r.Format.Valid && r.Physics.Valid && r.Compliance.Valid
	return r
}

// QualityScore derives the 0-100 score from a Result. It is a pure function
// of its argument.
func (e *Engine) QualityScore(r Result) int {
	score := 100.0
	for _, issue := range r.Errors {
		switch issue.Severity {
		case SeverityHigh:
			score -= 20
		case SeverityMedium:
			score -= 10
		default:
			score -= 5
		}
	}
	score -= 2 * float64(len(r.Warnings))

	switch r.Physics.Tier {
	case TierMajorErrors:
		score -= 30
	case TierMinorIssues:
		score -= 10
	case TierAccurate:
		score += 5
	}

	score += (r.Compliance.TopicRelevance - 0.5) * 40

	return int(min(max(score, 0), 100) + 0.5)
}

// Score validates q and returns its quality score.
func (e *Engine) Score(q question.RefinedQuestion, d question.Difficulty) int {
	return e.QualityScore(e.ValidateRefinedQuestion(q, d))
}

// IsQuestionAcceptable is the pipeline gate: no high-severity error and a
// physics tier other than major-errors. Compliance never blocks.
func (e *Engine) IsQuestionAcceptable(r Result) bool {
	return !r.HasHigh() && r.Physics.Tier != TierMajorErrors
}
