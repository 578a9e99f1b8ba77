// Package pipeline turns a topic into a vetted multiple-choice question by
// chaining the generation model, the refinement model and the validators,
// with retries, quota checks and fallbacks in between.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/monitoring"
	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/ratelimit"
	"github.com/abhisek/physiq/internal/topics"
	"github.com/abhisek/physiq/internal/validation"
)

// Deps are the collaborators an Orchestrator is built from. Refiner may be
// nil when refinement is disabled.
type Deps struct {
	Generator     llm.Provider
	GeneratorName string
	Refiner       llm.Provider
	RefinerName   string

	Validator *validation.Engine
	Limiter   *ratelimit.Limiter
	Failures  *failure.Service
	Monitor   *monitoring.Service
	Logger    zerolog.Logger
}

// Orchestrator runs the generation pipeline. It is safe for concurrent use;
// all per-request state lives in a run.
type Orchestrator struct {
	generator llm.Provider
	genName   string
	refiner   llm.Provider
	refName   string

	validator *validation.Engine
	limiter   *ratelimit.Limiter
	failures  *failure.Service
	monitor   *monitoring.Service
	logger    zerolog.Logger
	opts      Options

	now func() time.Time
}

// New returns an Orchestrator. Missing optional collaborators get fresh
// in-memory instances.
func New(deps Deps, opts Options) (*Orchestrator, error) {
	if deps.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	o := &Orchestrator{
		generator: deps.Generator,
		genName:   deps.GeneratorName,
		refiner:   deps.Refiner,
		refName:   deps.RefinerName,
		validator: deps.Validator,
		limiter:   deps.Limiter,
		failures:  deps.Failures,
		monitor:   deps.Monitor,
		logger:    deps.Logger.With().Str("component", "pipeline").Logger(),
		opts:      opts.withDefaults(),
		now:       time.Now,
	}
	if o.genName == "" {
		o.genName = o.generator.ModelID()
	}
	if o.refiner != nil && o.refName == "" {
		o.refName = o.refiner.ModelID()
	}
	if o.validator == nil {
		o.validator = validation.NewEngine()
	}
	if o.limiter == nil {
		o.limiter = ratelimit.New(ratelimit.Config{Backoff: ratelimit.DefaultBackoffConfig()}, deps.Logger)
	}
	if o.failures == nil {
		o.failures = failure.NewService(failure.DefaultConfig(), deps.Logger)
	}
	if o.monitor == nil {
		o.monitor = monitoring.NewService(monitoring.Config{}, deps.Logger)
	}
	return o, nil
}

// Options returns the effective options.
func (o *Orchestrator) Options() Options { return o.opts }

// Monitor returns the metrics store the orchestrator records into.
func (o *Orchestrator) Monitor() *monitoring.Service { return o.monitor }

// Limiter returns the quota tracker shared by all requests.
func (o *Orchestrator) Limiter() *ratelimit.Limiter { return o.limiter }

// run is the request-scoped state of one GenerateQuestion call.
type run struct {
	req      Request
	topic    topics.Topic
	start    time.Time
	stage    failure.Stage
	attempts int

	refinementAttempted bool
	refinementApplied   bool
	notes               []string
}

// GenerateQuestion runs the pipeline for one request. The returned error is
// always a *failure.Error.
func (o *Orchestrator) GenerateQuestion(ctx context.Context, req Request) (*question.GeneratedQuestion, error) {
	r := &run{req: req, start: o.now(), stage: failure.StageInitialization}

	ctx, cancel := context.WithTimeout(ctx, o.opts.MaxProcessingTime)
	defer cancel()

	q, fe := o.execute(ctx, r)
	if fe != nil {
		o.recordFailure(ctx, r, fe)
		return nil, fe
	}
	o.recordSuccess(ctx, r, q)
	return q, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run) (*question.GeneratedQuestion, *failure.Error) {
	req, t, fe := r.req.normalize()
	if fe != nil {
		return nil, fe
	}
	r.req, r.topic = req, t

	if o.opts.EnableRefinement && o.refiner == nil {
		return nil, failure.New(failure.KindConfiguration, failure.StageInitialization,
			"refinement is enabled but no refinement provider is configured")
	}

	log := o.logger.With().Str("topic", t.ID).Str("difficulty", string(req.Difficulty)).Logger()
	log.Debug().Msg("generating question")

	raw, fe := o.generate(ctx, r)
	if fe != nil {
		if o.canServeFallback(fe) {
			log.Warn().Str("code", fe.Code).Msg("generation exhausted, serving fallback")
			return o.fallback(r, fe), nil
		}
		return nil, fe
	}

	final, explanation, fe := o.refineOrPromote(ctx, r, raw)
	if fe != nil {
		return nil, fe
	}

	r.stage = failure.StageQualityCheck
	result := o.validator.ValidateRefinedQuestion(final, req.Difficulty)
	score := o.validator.QualityScore(result)
	if o.opts.RequireMinimumQuality && score < o.opts.MinimumQualityScore {
		return nil, failure.New(failure.KindValidation, failure.StageQualityCheck,
			"quality score %d is below the minimum of %d", score, o.opts.MinimumQualityScore).
			With("topic", t.ID).
			With("quality_score", fmt.Sprint(score))
	}

	if !o.opts.EnableValidation {
		r.notes = append(r.notes, question.NoteValidationDisabled)
	}

	r.stage = failure.StageDone
	q := &question.GeneratedQuestion{
		ID:            uuid.NewString(),
		Topic:         t.ID,
		Text:          final.Text,
		Options:       final.Options,
		CorrectAnswer: final.CorrectAnswer,
		Explanation:   explanation,
		Metadata: question.Metadata{
			GenerationModel:     o.generator.ModelID(),
			ProcessingTime:      o.now().Sub(r.start),
			RefinementApplied:   r.refinementApplied,
			RefinementAttempted: r.refinementAttempted,
			ValidationPassed:    o.opts.EnableValidation && result.Valid && o.validator.IsQuestionAcceptable(result),
			QualityScore:        score,
			Attempts:            r.attempts,
			Notes:               r.notes,
		},
		Type:       req.Type,
		Difficulty: req.Difficulty,
		CreatedAt:  o.now(),
	}
	if r.refinementAttempted {
		q.Metadata.RefinementModel = o.refiner.ModelID()
	}

	log.Info().
		Str("question_id", q.ID).
		Bool("refined", r.refinementApplied).
		Int("quality", score).
		Int("attempts", r.attempts).
		Dur("elapsed", q.Metadata.ProcessingTime).
		Msg("question generated")
	return q, nil
}

// refineOrPromote applies the refinement stage, demoting to the raw
// question when refinement fails and FallbackToOriginal is set.
func (o *Orchestrator) refineOrPromote(ctx context.Context, r *run, raw question.RawQuestion) (question.RefinedQuestion, string, *failure.Error) {
	if !o.opts.EnableRefinement {
		r.notes = append(r.notes, question.NoteRefinementDisabled)
		return question.FromRaw(raw), "", nil
	}

	r.refinementAttempted = true
	refined, fe := o.refine(ctx, r, raw)
	if fe == nil {
		r.refinementApplied = true
		return refined, refined.Explanation, nil
	}

	if !fe.Retryable || !o.opts.FallbackToOriginal {
		return question.RefinedQuestion{}, "", fe
	}
	o.report(ctx, fe, 0)

	note := question.NoteRefinementFailed
	if fe.Stage == failure.StageRefinedValidation {
		note = question.NoteRefinementValidationFailed
	}
	r.notes = append(r.notes, note)
	o.logger.Info().
		Str("topic", r.topic.ID).
		Str("code", fe.Code).
		Str("note", note).
		Msg("using the unrefined question")
	return question.FromRaw(raw), "", nil
}

// canServeFallback reports whether a failed generation stage may be
// replaced by a static question. Quota, configuration and raw-format
// failures never are.
func (o *Orchestrator) canServeFallback(fe *failure.Error) bool {
	return o.opts.EnableFallback && fe.Retryable && fe.Stage != failure.StageRawValidation
}

func (o *Orchestrator) fallback(r *run, cause *failure.Error) *question.GeneratedQuestion {
	q := o.failures.FallbackQuestion(r.topic.ID, cause)
	q.Difficulty = r.req.Difficulty
	q.Type = r.req.Type
	q.Metadata.Attempts = r.attempts
	q.Metadata.QualityScore = o.validator.Score(question.RefinedQuestion{
		Text:          q.Text,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Topic:         q.Topic,
	}, q.Difficulty)
	q.Metadata.ProcessingTime = o.now().Sub(r.start)
	r.stage = failure.StageDone
	return &q
}

// report logs fe with the failure service and the metrics store.
func (o *Orchestrator) report(ctx context.Context, fe *failure.Error, retry int) {
	o.failures.Log(fe, retry)
	o.monitor.RecordError(ctx, fe)
}

func (o *Orchestrator) recordSuccess(ctx context.Context, r *run, q *question.GeneratedQuestion) {
	o.monitor.RecordGeneration(context.WithoutCancel(ctx), monitoring.Outcome{
		QuestionID:          q.ID,
		Topic:               q.Topic,
		Difficulty:          q.Difficulty,
		Success:             true,
		Fallback:            q.Metadata.Fallback,
		RefinementAttempted: q.Metadata.RefinementAttempted,
		RefinementApplied:   q.Metadata.RefinementApplied,
		QualityScore:        q.Metadata.QualityScore,
		Attempts:            q.Metadata.Attempts,
		Duration:            o.now().Sub(r.start),
	})
}

func (o *Orchestrator) recordFailure(ctx context.Context, r *run, fe *failure.Error) {
	ctx = context.WithoutCancel(ctx)
	// Generation-stage errors were logged per attempt.
	if fe.Stage != failure.StageGeneration && fe.Stage != failure.StageRawValidation {
		o.report(ctx, fe, r.attempts)
	}
	o.monitor.RecordGeneration(ctx, monitoring.Outcome{
		Topic:               r.req.Topic,
		Difficulty:          r.req.Difficulty,
		Success:             false,
		RefinementAttempted: r.refinementAttempted,
		Attempts:            r.attempts,
		Duration:            o.now().Sub(r.start),
		ErrorKind:           fe.Kind,
		Stage:               fe.Stage,
	})
}

// summarize joins up to three issue messages.
func summarize(issues []validation.Issue) string {
	msgs := make([]string, 0, 3)
	for i, is := range issues {
		if i == 3 {
			break
		}
		msgs = append(msgs, is.Message)
	}
	return strings.Join(msgs, "; ")
}
