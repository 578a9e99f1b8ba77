package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/monitoring"
	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/ratelimit"
)

const (
	goodGeneration = `{"generated_text": "QUESTION: A car accelerates uniformly from rest to 20 m/s in 5.0 s. What is the acceleration of the car?\nA) 0.25 m/s²\nB) 4.0 m/s²\nC) 20 m/s²\nD) 100 m/s²\nANSWER: B"}`

	goodRefinement = `Refined Question: A car accelerates uniformly from rest to 20 m/s in a time of 5.0 s. What is the magnitude of the acceleration of the car?
A) 0.25 m/s²
B) 4.0 m/s²
C) 20 m/s²
D) 100 m/s²
CORRECT_ANSWER: B
EXPLANATION: a = Δv/Δt = 20 m/s ÷ 5.0 s = 4.0 m/s².
IMPROVEMENTS_MADE:
- Stated the time interval explicitly`

	// Passes the parser but claims an impossible efficiency.
	impossibleRefinement = `Refined Question: A motor with an efficiency of 120% accelerates a cart from rest to 20 m/s in 5.0 s. What is the acceleration of the cart?
A) 0.25 m/s²
B) 4.0 m/s²
C) 20 m/s²
D) 100 m/s²
CORRECT_ANSWER: B`

	twoOptions = "QUESTION: What is the unit of force in the SI system?\nA) Newton\nB) Joule\nANSWER: A"
)

type fixture struct {
	gen     *llm.MockProvider
	ref     *llm.MockProvider
	limiter *ratelimit.Limiter
	fails   *failure.Service
	monitor *monitoring.Service
	orch    *Orchestrator
}

func newFixture(t *testing.T, gen, ref *llm.MockProvider, opts Options, limits map[string]ratelimit.Limits) *fixture {
	t.Helper()
	log := zerolog.Nop()

	f := &fixture{
		gen:     gen,
		ref:     ref,
		limiter: ratelimit.New(ratelimit.Config{Limits: limits, Backoff: ratelimit.TestBackoffConfig()}, log),
		fails:   failure.NewService(failure.Config{LogCapacity: 100}, log),
		monitor: monitoring.NewService(monitoring.Config{}, log),
	}

	deps := Deps{
		Generator:     gen.WithModel("llama-ib-physics"),
		GeneratorName: "lit",
		Limiter:       f.limiter,
		Failures:      f.fails,
		Monitor:       f.monitor,
		Logger:        log,
	}
	if ref != nil {
		deps.Refiner = ref.WithModel("openai/gpt-4o-mini")
		deps.RefinerName = llm.RefinerOpenRouter
	}

	orch, err := New(deps, opts)
	require.NoError(t, err)
	f.orch = orch
	return f
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.MaxProcessingTime = 5 * time.Second
	opts.GenerationTimeout = time.Second
	opts.RefinementTimeout = time.Second
	return opts
}

func unavailable() llm.MockResponse {
	return llm.MockError(&llm.ErrProviderUnavailable{Err: errors.New("connection refused")})
}

func asFailure(t *testing.T, err error) *failure.Error {
	t.Helper()
	var fe *failure.Error
	require.True(t, errors.As(err, &fe), "expected *failure.Error, got %T: %v", err, err)
	return fe
}

func TestGenerateQuestion_RefinementApplied(t *testing.T) {
	f := newFixture(t,
		llm.NewMockProvider(llm.MockText(goodGeneration)),
		llm.NewMockProvider(llm.MockText(goodRefinement)),
		testOptions(), nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics", Difficulty: question.DifficultyStandard})
	require.NoError(t, err)

	assert.True(t, q.Metadata.RefinementApplied)
	assert.True(t, q.Metadata.RefinementAttempted)
	assert.True(t, q.Metadata.ValidationPassed)
	assert.False(t, q.Metadata.Fallback)
	assert.Len(t, q.Options, 4)
	assert.Equal(t, question.LetterB, q.CorrectAnswer)
	assert.Contains(t, q.Text, "magnitude of the acceleration")
	assert.Contains(t, q.Explanation, "Δv/Δt")
	assert.Equal(t, "llama-ib-physics", q.Metadata.GenerationModel)
	assert.Equal(t, "openai/gpt-4o-mini", q.Metadata.RefinementModel)
	assert.Equal(t, 1, q.Metadata.Attempts)
	assert.Equal(t, question.TypeMultipleChoice, q.Type)
	assert.NotEmpty(t, q.ID)

	// The refiner got the system prompt and the raw question.
	require.Equal(t, 1, f.ref.CallCount())
	call := f.ref.Calls[0]
	assert.Contains(t, call.System, "IB Physics")
	assert.Contains(t, call.Messages[0].Content, "A car accelerates uniformly")
	assert.Nil(t, call.Schema)

	m := f.monitor.Metrics()
	assert.Equal(t, 1, m.TotalGenerations)
	assert.Equal(t, 1, m.Successful)
	assert.InDelta(t, 1.0, m.RefinementRate, 1e-9)
}

func TestGenerateQuestion_RefinementFailsFallsBackToOriginal(t *testing.T) {
	f := newFixture(t,
		llm.NewMockProvider(llm.MockText(goodGeneration)),
		llm.NewMockProvider(unavailable()),
		testOptions(), nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)

	assert.False(t, q.Metadata.RefinementApplied)
	assert.True(t, q.Metadata.RefinementAttempted)
	assert.True(t, q.Metadata.HasNote(question.NoteRefinementFailed))
	assert.Equal(t, "A car accelerates uniformly from rest to 20 m/s in 5.0 s. What is the acceleration of the car?", q.Text)
	assert.Equal(t, []string{"0.25 m/s²", "4.0 m/s²", "20 m/s²", "100 m/s²"}, q.Options)
	assert.Equal(t, question.LetterB, q.CorrectAnswer)

	entries := f.fails.ErrorLog().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, failure.KindRefinement, entries[0].Kind)
}

func TestGenerateQuestion_RefinedValidationFailureDemotes(t *testing.T) {
	f := newFixture(t,
		llm.NewMockProvider(llm.MockText(goodGeneration)),
		llm.NewMockProvider(llm.MockText(impossibleRefinement)),
		testOptions(), nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)

	assert.False(t, q.Metadata.RefinementApplied)
	assert.True(t, q.Metadata.HasNote(question.NoteRefinementValidationFailed))
	assert.NotContains(t, q.Text, "efficiency")
}

func TestGenerateQuestion_RefinementFailurePropagatesWithoutFallbackToOriginal(t *testing.T) {
	opts := testOptions()
	opts.FallbackToOriginal = false
	f := newFixture(t,
		llm.NewMockProvider(llm.MockText(goodGeneration)),
		llm.NewMockProvider(llm.MockError(context.DeadlineExceeded)),
		opts, nil)

	_, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.Error(t, err)

	fe := asFailure(t, err)
	assert.Equal(t, failure.KindRefinement, fe.Kind)
	assert.Equal(t, failure.SubKindTimeout, fe.SubKind)
	assert.Equal(t, failure.StageRefinement, fe.Stage)
	assert.True(t, fe.Retryable)

	m := f.monitor.Metrics()
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, 1, m.ErrorsByKind[failure.KindRefinement])
}

func TestGenerateQuestion_RefinementDisabled(t *testing.T) {
	opts := testOptions()
	opts.EnableRefinement = false
	f := newFixture(t, llm.NewMockProvider(llm.MockText(goodGeneration)), nil, opts, nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)

	assert.False(t, q.Metadata.RefinementAttempted)
	assert.True(t, q.Metadata.HasNote(question.NoteRefinementDisabled))
	assert.Empty(t, q.Metadata.RefinementModel)
}

func TestGenerateQuestion_RefinementEnabledWithoutRefiner(t *testing.T) {
	gen := llm.NewMockProvider(llm.MockText(goodGeneration))
	f := newFixture(t, gen, nil, testOptions(), nil)

	_, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	fe := asFailure(t, err)
	assert.Equal(t, failure.KindConfiguration, fe.Kind)
	assert.False(t, fe.Retryable)
	assert.Zero(t, gen.CallCount())
}

func TestGenerateQuestion_BothProvidersFailServesFallback(t *testing.T) {
	f := newFixture(t,
		llm.NewRepeatingMockProvider(unavailable()),
		llm.NewRepeatingMockProvider(unavailable()),
		testOptions(), nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics", Difficulty: question.DifficultyHigher})
	require.NoError(t, err)

	assert.True(t, q.Metadata.Fallback)
	assert.True(t, q.Metadata.HasNote(question.NoteStaticFallback))
	assert.Len(t, q.Options, 4)
	assert.True(t, q.CorrectAnswer.Valid())
	assert.NotEmpty(t, q.Text)
	assert.Equal(t, question.DifficultyHigher, q.Difficulty)
	assert.Contains(t, q.Explanation, "connection refused")
	assert.Equal(t, 3, q.Metadata.Attempts)
	assert.Equal(t, 3, f.gen.CallCount())

	m := f.monitor.Metrics()
	assert.Equal(t, 1, m.Successful)
	assert.InDelta(t, 1.0, m.FallbackRate, 1e-9)
	assert.Equal(t, 3, m.ErrorsByKind[failure.KindGeneration])
}

func TestGenerateQuestion_GenerationFailsWithoutFallback(t *testing.T) {
	opts := testOptions()
	opts.EnableFallback = false
	f := newFixture(t,
		llm.NewRepeatingMockProvider(unavailable()),
		llm.NewMockProvider(),
		opts, nil)

	_, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	fe := asFailure(t, err)
	assert.Equal(t, failure.KindGeneration, fe.Kind)
	assert.Equal(t, failure.StageGeneration, fe.Stage)
	assert.Equal(t, "kinematics", fe.Context["topic"])
}

func TestGenerateQuestion_RetriesAfterParseError(t *testing.T) {
	f := newFixture(t,
		llm.NewMockProvider(llm.MockText(twoOptions), llm.MockText(goodGeneration)),
		llm.NewMockProvider(llm.MockText(goodRefinement)),
		testOptions(), nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Metadata.Attempts)
	assert.True(t, q.Metadata.RefinementApplied)

	entries := f.fails.ErrorLog().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, failure.KindValidation, entries[0].Kind)
	assert.Equal(t, "wrong_option_count", entries[0].Context["parse_error"])
}

func TestGenerateQuestion_ParseErrorsExhaustValidationCap(t *testing.T) {
	f := newFixture(t,
		llm.NewRepeatingMockProvider(llm.MockText(twoOptions)),
		llm.NewMockProvider(),
		testOptions(), nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)

	// Validation failures are capped at two in the retry window.
	assert.Equal(t, 2, f.gen.CallCount())
	assert.True(t, q.Metadata.Fallback)
}

func TestGenerateQuestion_QuotaIsFatal(t *testing.T) {
	limits := map[string]ratelimit.Limits{
		"lit": {CostPerToken: 0.01, MaxDailyCost: 1},
	}
	f := newFixture(t,
		llm.NewRepeatingMockProvider(llm.MockText(goodGeneration)),
		llm.NewRepeatingMockProvider(llm.MockText(goodRefinement)),
		testOptions(), limits)

	// Spend the whole daily budget.
	require.NoError(t, f.limiter.TrackUsage(context.Background(), "lit", 100))

	_, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	fe := asFailure(t, err)
	assert.Equal(t, failure.KindQuota, fe.Kind)
	assert.False(t, fe.Retryable)
	assert.Zero(t, f.gen.CallCount())

	var qe *ratelimit.QuotaError
	assert.True(t, errors.As(err, &qe))
}

func TestGenerateQuestion_FailedCallReturnsItsSlot(t *testing.T) {
	limits := map[string]ratelimit.Limits{
		"lit": {RequestsPerDay: 1},
	}
	f := newFixture(t,
		llm.NewMockProvider(unavailable(), llm.MockText(goodGeneration)),
		llm.NewMockProvider(llm.MockText(goodRefinement)),
		testOptions(), limits)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)
	assert.False(t, q.Metadata.Fallback)
	assert.Equal(t, 2, q.Metadata.Attempts)

	st, err := f.limiter.Status(context.Background(), "lit")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Requests.Day)
	assert.Zero(t, st.InFlight)
}

func TestGenerateQuestion_QualityGate(t *testing.T) {
	opts := testOptions()
	opts.RequireMinimumQuality = true
	opts.MinimumQualityScore = 101 // unreachable
	f := newFixture(t,
		llm.NewRepeatingMockProvider(llm.MockText(goodGeneration)),
		llm.NewRepeatingMockProvider(llm.MockText(goodRefinement)),
		opts, nil)

	_, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	fe := asFailure(t, err)
	assert.Equal(t, failure.KindValidation, fe.Kind)
	assert.Equal(t, failure.StageQualityCheck, fe.Stage)
	assert.Contains(t, fe.Message, "below the minimum of 101")

	// Not retried and not substituted.
	assert.Equal(t, 1, f.gen.CallCount())
	assert.Equal(t, 0, f.monitor.Metrics().Successful)

	opts.MinimumQualityScore = 0
	f = newFixture(t,
		llm.NewRepeatingMockProvider(llm.MockText(goodGeneration)),
		llm.NewRepeatingMockProvider(llm.MockText(goodRefinement)),
		opts, nil)
	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, q.Metadata.QualityScore, 0)
	assert.LessOrEqual(t, q.Metadata.QualityScore, 100)
}

func TestGenerateQuestion_InvalidRequest(t *testing.T) {
	f := newFixture(t, llm.NewMockProvider(), llm.NewMockProvider(), testOptions(), nil)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing topic", Request{}},
		{"bad difficulty", Request{Topic: "kinematics", Difficulty: "expert"}},
		{"bad type", Request{Topic: "kinematics", Type: "essay"}},
		{"unknown topic", Request{Topic: "astrology"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orch.GenerateQuestion(context.Background(), tt.req)
			fe := asFailure(t, err)
			assert.Equal(t, failure.KindValidation, fe.Kind)
			assert.Equal(t, failure.StageInitialization, fe.Stage)
			assert.False(t, fe.Retryable)
		})
	}
	assert.Zero(t, f.gen.CallCount())
}

func TestGenerateQuestion_LongAnswerStamped(t *testing.T) {
	f := newFixture(t,
		llm.NewMockProvider(llm.MockText(goodGeneration)),
		llm.NewMockProvider(llm.MockText(goodRefinement)),
		testOptions(), nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics", Type: question.TypeLongAnswer})
	require.NoError(t, err)
	assert.Equal(t, question.TypeLongAnswer, q.Type)
	assert.Len(t, q.Options, 4)
}

func TestGenerateQuestion_StructuredRefinement(t *testing.T) {
	opts := testOptions()
	opts.StructuredRefinement = true
	refined := `{"question":"A car accelerates uniformly from rest to 20 m/s in a time of 5.0 s. What is its acceleration?","options":["0.25 m/s²","4.0 m/s²","20 m/s²","100 m/s²"],"correct_answer":"B","explanation":"a = Δv/Δt","improvements":["Clarified timing"]}`
	f := newFixture(t,
		llm.NewMockProvider(llm.MockText(goodGeneration)),
		llm.NewMockProvider(llm.MockText(refined)),
		opts, nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "kinematics"})
	require.NoError(t, err)
	assert.True(t, q.Metadata.RefinementApplied)
	assert.Equal(t, "a = Δv/Δt", q.Explanation)
	assert.Same(t, RefinedQuestionSchema, f.ref.Calls[0].Schema)
}

func TestGenerateQuestion_ProcessingDeadline(t *testing.T) {
	opts := testOptions()
	opts.MaxProcessingTime = 50 * time.Millisecond
	opts.GenerationTimeout = time.Second
	slow := llm.MockResponse{Content: []byte(goodGeneration), Delay: time.Second}
	f := newFixture(t,
		llm.NewRepeatingMockProvider(slow),
		llm.NewMockProvider(),
		opts, nil)

	q, err := f.orch.GenerateQuestion(context.Background(), Request{Topic: "wave-model"})
	require.NoError(t, err)
	assert.True(t, q.Metadata.Fallback)
	assert.Equal(t, 1, f.gen.CallCount())
}

func TestGenerateMultipleQuestions(t *testing.T) {
	f := newFixture(t,
		llm.NewRepeatingMockProvider(llm.MockText(goodGeneration)),
		llm.NewRepeatingMockProvider(llm.MockText(goodRefinement)),
		testOptions(), nil)

	reqs := []Request{
		{Topic: "kinematics"},
		{Topic: "no-such-topic"},
		{Topic: "kinematics", Difficulty: question.DifficultyHigher},
		{Topic: "kinematics"},
		{Topic: "kinematics", Type: question.TypeLongAnswer},
	}
	qs, err := f.orch.GenerateMultipleQuestions(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, qs, 4)
	assert.Equal(t, question.DifficultyHigher, qs[1].Difficulty)
	assert.Equal(t, question.TypeLongAnswer, qs[3].Type)

	m := f.monitor.Metrics()
	assert.Equal(t, 5, m.TotalGenerations)
	assert.Equal(t, 4, m.Successful)
}

func TestGenerateMultipleQuestions_AllFail(t *testing.T) {
	f := newFixture(t, llm.NewMockProvider(), llm.NewMockProvider(), testOptions(), nil)

	qs, err := f.orch.GenerateMultipleQuestions(context.Background(), []Request{{Topic: "x"}, {Topic: "y"}})
	require.Error(t, err)
	assert.Nil(t, qs)
	assert.Contains(t, err.Error(), "all 2 batch requests failed")

	fe := asFailure(t, err)
	assert.Equal(t, failure.KindValidation, fe.Kind)
}

func TestGenerateMultipleQuestions_QuotaStopsBatch(t *testing.T) {
	limits := map[string]ratelimit.Limits{
		"lit": {CostPerToken: 0.01, MaxDailyCost: 1},
	}
	f := newFixture(t,
		llm.NewRepeatingMockProvider(llm.MockText(goodGeneration)),
		llm.NewRepeatingMockProvider(llm.MockText(goodRefinement)),
		testOptions(), limits)
	require.NoError(t, f.limiter.TrackUsage(context.Background(), "lit", 100))

	reqs := make([]Request, 2*BatchGroupSize+1)
	for i := range reqs {
		reqs[i] = Request{Topic: "kinematics"}
	}
	qs, err := f.orch.GenerateMultipleQuestions(context.Background(), reqs)
	require.Error(t, err)
	assert.Nil(t, qs)
	assert.True(t, failure.IsKind(err, failure.KindQuota))
	assert.Zero(t, f.gen.CallCount())

	// Only the first group ran.
	assert.Equal(t, BatchGroupSize, f.monitor.Metrics().TotalGenerations)
}

func TestGenerateMultipleQuestions_Empty(t *testing.T) {
	f := newFixture(t, llm.NewMockProvider(), llm.NewMockProvider(), testOptions(), nil)
	qs, err := f.orch.GenerateMultipleQuestions(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, qs)
}

// overlapCounter counts how many Generate calls overlap.
type overlapCounter struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (p *overlapCounter) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.inFlight++
	p.peak = max(p.peak, p.inFlight)
	p.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
	return &llm.Response{Content: []byte(goodGeneration), Model: "counter"}, nil
}

func (p *overlapCounter) ModelID() string { return "counter" }

func TestGenerateMultipleQuestions_BoundedFanOut(t *testing.T) {
	counter := &overlapCounter{}
	opts := testOptions()
	opts.EnableRefinement = false
	orch, err := New(Deps{
		Generator: counter,
		Limiter:   ratelimit.New(ratelimit.Config{Backoff: ratelimit.TestBackoffConfig()}, zerolog.Nop()),
		Logger:    zerolog.Nop(),
	}, opts)
	require.NoError(t, err)

	reqs := make([]Request, 7)
	for i := range reqs {
		reqs[i] = Request{Topic: "kinematics"}
	}
	qs, err := orch.GenerateMultipleQuestions(context.Background(), reqs)
	require.NoError(t, err)
	assert.Len(t, qs, 7)
	assert.LessOrEqual(t, counter.peak, BatchGroupSize)
}

func TestHealthCheck(t *testing.T) {
	gen := llm.NewMockProvider()
	ref := llm.NewMockProvider()
	f := newFixture(t, gen, ref, testOptions(), nil)

	h := f.orch.HealthCheck(context.Background())
	assert.Equal(t, monitoring.StatusHealthy, h.Status)
	assert.Equal(t, monitoring.StatusHealthy, h.Services[ServiceGeneration])
	assert.Equal(t, monitoring.StatusHealthy, h.Services[ServiceRefinement])
	assert.Equal(t, monitoring.StatusHealthy, h.Services[ServiceValidation])
	assert.Len(t, h.Indicators, 3)

	gen.PingErr = errors.New("connection refused")
	h = f.orch.HealthCheck(context.Background())
	assert.Equal(t, monitoring.StatusDegraded, h.Status)
	assert.Equal(t, monitoring.StatusUnhealthy, h.Services[ServiceGeneration])
	require.NotEmpty(t, h.Details)
	assert.True(t, containsPrefix(h.Details, "generation:"))
}

func TestHealthCheck_RefinerMissing(t *testing.T) {
	f := newFixture(t, llm.NewMockProvider(), nil, testOptions(), nil)

	h := f.orch.HealthCheck(context.Background())
	assert.Equal(t, monitoring.StatusDegraded, h.Status)
	assert.Equal(t, monitoring.StatusUnhealthy, h.Services[ServiceRefinement])

	opts := testOptions()
	opts.EnableRefinement = false
	f = newFixture(t, llm.NewMockProvider(), nil, opts, nil)
	h = f.orch.HealthCheck(context.Background())
	assert.Equal(t, monitoring.StatusHealthy, h.Status)
	assert.Contains(t, h.Details, "refinement: disabled")
}

// pingless hides the mock's Ping.
type pingless struct{ llm.Provider }

func TestHealthCheck_RefinerWithoutPingIsDegraded(t *testing.T) {
	log := zerolog.Nop()
	failing := llm.NewRepeatingMockProvider(unavailable())

	for name, refiner := range map[string]llm.Provider{
		"bare":    pingless{failing},
		"wrapped": llm.WithLogging(pingless{failing}, nil, log),
	} {
		t.Run(name, func(t *testing.T) {
			orch, err := New(Deps{
				Generator:     llm.NewMockProvider(),
				GeneratorName: "lit",
				Refiner:       refiner,
				RefinerName:   llm.RefinerAnthropic,
				Limiter:       ratelimit.New(ratelimit.Config{}, log),
				Failures:      failure.NewService(failure.Config{LogCapacity: 10}, log),
				Monitor:       monitoring.NewService(monitoring.Config{}, log),
				Logger:        log,
			}, testOptions())
			require.NoError(t, err)

			h := orch.HealthCheck(context.Background())
			assert.Equal(t, monitoring.StatusDegraded, h.Services[ServiceRefinement])
			assert.Equal(t, monitoring.StatusDegraded, h.Status)
			assert.True(t, containsPrefix(h.Details, "refinement:"))
		})
	}
}

func TestNew_RequiresGenerator(t *testing.T) {
	_, err := New(Deps{Logger: zerolog.Nop()}, DefaultOptions())
	assert.Error(t, err)
}

func containsPrefix(items []string, prefix string) bool {
	for _, s := range items {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
