// Package app assembles the pipeline and its collaborators from
// configuration. Commands build one App per invocation and close it on exit.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abhisek/physiq/internal/config"
	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/monitoring"
	"github.com/abhisek/physiq/internal/pipeline"
	"github.com/abhisek/physiq/internal/ratelimit"
	"github.com/abhisek/physiq/internal/store"
	"github.com/abhisek/physiq/internal/validation"
)

// App owns every long-lived resource of a physiq process.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    *store.Store
	Limiter  *ratelimit.Limiter
	Failures *failure.Service
	Monitor  *monitoring.Service
	Pipeline *pipeline.Orchestrator

	redis *redis.Client
}

// New opens the event store, connects the quota ledger and builds the
// providers named in cfg.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.ValidateProviders(); err != nil {
		return nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	} else if err := store.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &App{Config: cfg, Logger: logger, Store: s}

	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config
	repo := a.Store.EventRepo()

	var ledger ratelimit.Ledger
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL, a.Logger)
		if err != nil {
			return fmt.Errorf("connect quota ledger: %w", err)
		}
		a.redis = rdb
		ledger = ratelimit.NewRedisLedger(rdb, "physiq")
	}
	a.Limiter = ratelimit.New(ratelimit.Config{
		Limits:  cfg.Limits,
		Backoff: ratelimit.DefaultBackoffConfig(),
		Ledger:  ledger,
	}, a.Logger)

	a.Failures = failure.NewService(failure.DefaultConfig(), a.Logger)
	a.Monitor = monitoring.NewService(monitoring.Config{}, a.Logger)
	a.Monitor.SetSink(NewStoreSink(repo))

	gen, err := llm.NewGenerator(cfg.LLM, repo, a.Logger)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Generator:     gen,
		GeneratorName: cfg.LLM.Generator,
		Validator:     validation.NewEngine(),
		Limiter:       a.Limiter,
		Failures:      a.Failures,
		Monitor:       a.Monitor,
		Logger:        a.Logger,
	}
	if cfg.EnableRefinement {
		ref, err := llm.NewRefiner(ctx, cfg.LLM, repo, a.Logger)
		if err != nil {
			return err
		}
		deps.Refiner = ref
		deps.RefinerName = cfg.LLM.Refiner
	}

	a.Pipeline, err = pipeline.New(deps, Options(cfg))
	return err
}

// Options maps configuration onto pipeline options.
func Options(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		EnableRefinement:      cfg.EnableRefinement,
		FallbackToOriginal:    cfg.FallbackToOriginal,
		EnableFallback:        cfg.EnableFallback,
		EnableValidation:      cfg.EnableValidation,
		RequireMinimumQuality: cfg.RequireMinimumQuality,
		StructuredRefinement:  cfg.StructuredRefinement,
		MinimumQualityScore:   cfg.MinimumQualityScore,
		MaxGenerationAttempts: cfg.MaxGenerationAttempts,
		MaxProcessingTime:     cfg.MaxProcessingTime,
		GenerationTimeout:     cfg.GenerationTimeout,
		RefinementTimeout:     cfg.RefinementTimeout,
	}
}

// Close releases the store and the Redis connection.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
