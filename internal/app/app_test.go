package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/physiq/internal/config"
	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/monitoring"
	"github.com/abhisek/physiq/internal/pipeline"
	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/store"
)

func mockConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.LLM.Generator = "mock"
	cfg.LLM.Refiner = llm.RefinerMock
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "physiq.db")
	return cfg
}

func TestNew_GeneratesAndPersists(t *testing.T) {
	a, err := New(context.Background(), mockConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	q, err := a.Pipeline.GenerateQuestion(context.Background(), pipeline.Request{Topic: "kinematics"})
	require.NoError(t, err)
	assert.True(t, q.Metadata.RefinementApplied)
	assert.Equal(t, question.LetterB, q.CorrectAnswer)

	ctx := context.Background()
	repo := a.Store.EventRepo()

	gens, err := repo.QueryGenerations(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, q.ID, gens[0].QuestionID)
	assert.Equal(t, "kinematics", gens[0].Topic)
	assert.True(t, gens[0].Success)

	events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, llm.PurposeRefinement, events[0].Purpose)
	assert.Equal(t, llm.PurposeGeneration, events[1].Purpose)
}

func TestNew_RefinementDisabledSkipsRefiner(t *testing.T) {
	cfg := mockConfig(t)
	cfg.EnableRefinement = false
	cfg.LLM.Refiner = "bogus"

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	q, err := a.Pipeline.GenerateQuestion(context.Background(), pipeline.Request{Topic: "kinematics"})
	require.NoError(t, err)
	assert.True(t, q.Metadata.HasNote(question.NoteRefinementDisabled))
}

func TestNew_InvalidProviders(t *testing.T) {
	cfg := mockConfig(t)
	cfg.LLM.Generator = "lit"
	cfg.LLM.LIT.URL = ""

	_, err := New(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PHYSIQ_LIT_URL")
}

func TestNew_UnreachableRedis(t *testing.T) {
	cfg := mockConfig(t)
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := New(ctx, cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota ledger")
}

func TestOptions(t *testing.T) {
	cfg := config.Default()
	cfg.MaxGenerationAttempts = 5
	cfg.StructuredRefinement = true

	opts := Options(cfg)
	assert.Equal(t, 5, opts.MaxGenerationAttempts)
	assert.True(t, opts.StructuredRefinement)
	assert.Equal(t, cfg.MaxProcessingTime, opts.MaxProcessingTime)
	assert.Equal(t, cfg.MinimumQualityScore, opts.MinimumQualityScore)
}

func TestStoreSink(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "sink.db"))
	require.NoError(t, err)
	defer s.Close()

	sink := NewStoreSink(s.EventRepo())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, sink.SaveOutcome(ctx, monitoring.Outcome{
		Timestamp:  now,
		Topic:      "waves",
		Difficulty: question.DifficultyHigher,
		Success:    false,
		Attempts:   3,
		Duration:   1500 * time.Millisecond,
		ErrorKind:  failure.KindGeneration,
		Stage:      failure.StageGeneration,
	}))
	require.NoError(t, sink.SaveError(ctx, monitoring.ErrorRecord{
		Timestamp: now,
		Kind:      failure.KindGeneration,
		Stage:     failure.StageGeneration,
		Code:      "generation-failure/timeout",
		Message:   "deadline exceeded",
	}))

	gens, err := s.EventRepo().QueryGenerations(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, "higher", gens[0].Difficulty)
	assert.Equal(t, int64(1500), gens[0].DurationMs)
	assert.Equal(t, string(failure.KindGeneration), gens[0].ErrorKind)
	assert.Equal(t, "llama_generation", gens[0].Stage)

	counts, err := s.EventRepo().ErrorCounts(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, store.ErrorKindCount{Kind: "generation-failure", Count: 1}, counts[0])
}
