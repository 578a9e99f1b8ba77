package pipeline

import (
	"context"
	"fmt"

	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/parser"
	"github.com/abhisek/physiq/internal/question"
)

const (
	refinementMaxTokens   = 800
	refinementTemperature = 0.3
)

// generate runs the generation and raw-validation stages, retrying until a
// raw question passes, the retry policy says stop, or ctx ends. Every failed
// attempt is logged before the next one.
func (o *Orchestrator) generate(ctx context.Context, r *run) (question.RawQuestion, *failure.Error) {
	for attempt := 1; ; attempt++ {
		r.attempts = attempt
		raw, fe := o.generateOnce(ctx, r)
		if fe == nil {
			return raw, nil
		}
		o.report(ctx, fe, attempt-1)

		if attempt >= o.opts.MaxGenerationAttempts || ctx.Err() != nil || !o.failures.ShouldRetry(fe) {
			return question.RawQuestion{}, fe
		}

		o.logger.Debug().
			Str("topic", r.topic.ID).
			Str("code", fe.Code).
			Int("attempt", attempt).
			Msg("retrying generation")

		if err := o.limiter.Backoff(ctx, fe, o.failures.RetryDelay(attempt)); err != nil {
			return question.RawQuestion{}, fe
		}
	}
}

// generateOnce is a single generation attempt.
func (o *Orchestrator) generateOnce(ctx context.Context, r *run) (question.RawQuestion, *failure.Error) {
	r.stage = failure.StageGeneration

	if _, err := o.limiter.CheckLimit(ctx, o.genName); err != nil {
		return question.RawQuestion{}, failure.Classify(err, r.stage)
	}

	callCtx, cancel := context.WithTimeout(llm.WithPurpose(ctx, llm.PurposeGeneration), o.opts.GenerationTimeout)
	defer cancel()

	resp, err := o.generator.Generate(callCtx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: parser.GenerationPrompt(r.topic, r.req.Difficulty)},
		},
	})
	if err != nil {
		o.limiter.Release(o.genName)
		return question.RawQuestion{}, failure.Classify(err, r.stage).With("topic", r.topic.ID)
	}
	o.trackUsage(ctx, o.genName, resp)

	raw, err := parser.Parse(resp.Text(), r.topic.ID)
	if err != nil {
		return question.RawQuestion{}, failure.Classify(err, r.stage).With("topic", r.topic.ID)
	}

	if !o.opts.EnableValidation {
		return raw, nil
	}
	r.stage = failure.StageRawValidation
	if v := o.validator.ValidateFormat(raw); !v.Valid {
		return question.RawQuestion{}, failure.New(failure.KindValidation, r.stage,
			"raw question failed format validation: %s", summarize(v.Errors)).
			With("topic", r.topic.ID)
	}
	return raw, nil
}

// refine runs the refinement and refined-validation stages once.
func (o *Orchestrator) refine(ctx context.Context, r *run, raw question.RawQuestion) (question.RefinedQuestion, *failure.Error) {
	r.stage = failure.StageRefinement

	if _, err := o.limiter.CheckLimit(ctx, o.refName); err != nil {
		return question.RefinedQuestion{}, failure.Classify(err, r.stage)
	}

	callCtx, cancel := context.WithTimeout(llm.WithPurpose(ctx, llm.PurposeRefinement), o.opts.RefinementTimeout)
	defer cancel()

	req := llm.Request{
		System: parser.RefinementSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: parser.RefinementPrompt(raw, r.topic)},
		},
		MaxTokens:   refinementMaxTokens,
		Temperature: refinementTemperature,
	}
	if o.opts.StructuredRefinement {
		req.Schema = RefinedQuestionSchema
	}

	resp, err := o.refiner.Generate(callCtx, req)
	if err != nil {
		o.limiter.Release(o.refName)
		return question.RefinedQuestion{}, failure.Classify(err, r.stage).With("topic", r.topic.ID)
	}
	o.trackUsage(ctx, o.refName, resp)

	refined := parser.ParseRefinement(resp.Text(), raw)

	r.stage = failure.StageRefinedValidation
	if refined.ValidationStatus == question.StatusRejected {
		return question.RefinedQuestion{}, failure.New(failure.KindValidation, r.stage,
			"refinement reply rejected the question or could not be read").
			With("topic", r.topic.ID)
	}
	if !o.opts.EnableValidation {
		return refined, nil
	}

	result := o.validator.ValidateRefinedQuestion(refined, r.req.Difficulty)
	if !result.Valid || !o.validator.IsQuestionAcceptable(result) {
		return question.RefinedQuestion{}, failure.New(failure.KindValidation, r.stage,
			"refined question failed validation: %s", summarize(result.Errors)).
			With("topic", r.topic.ID).
			With("physics_tier", string(result.Physics.Tier)).
			With("quality_score", fmt.Sprint(o.validator.QualityScore(result)))
	}
	return refined, nil
}

// trackUsage charges a completed call to provider and settles its
// reservation. Providers that report no usage are charged an estimate from
// the reply length.
func (o *Orchestrator) trackUsage(ctx context.Context, provider string, resp *llm.Response) {
	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}
	if tokens == 0 {
		tokens = max(len(resp.Content)/4, 1)
	}
	if err := o.limiter.TrackUsage(ctx, provider, tokens); err != nil {
		o.logger.Warn().Err(err).Str("provider", provider).Msg("failed to track usage")
	}
}
