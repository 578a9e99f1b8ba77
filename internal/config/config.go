// Package config loads the pipeline settings from PHYSIQ_* environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/ratelimit"
	"github.com/abhisek/physiq/internal/validator"
)

const envPrefix = "PHYSIQ_"

// Config holds all application configuration.
type Config struct {
	EnableRefinement      bool          `json:"enable_refinement"`
	FallbackToOriginal    bool          `json:"fallback_to_original"`
	EnableFallback        bool          `json:"enable_fallback"`
	EnableValidation      bool          `json:"enable_validation"`
	RequireMinimumQuality bool          `json:"require_minimum_quality"`
	StructuredRefinement  bool          `json:"structured_refinement"`
	MinimumQualityScore   int           `json:"minimum_quality_score" validate:"gte=0,lte=100"`
	MaxGenerationAttempts int           `json:"max_generation_attempts" validate:"gte=1,lte=10"`
	MaxProcessingTime     time.Duration `json:"max_processing_time" validate:"gt=0"`
	GenerationTimeout     time.Duration `json:"generation_timeout" validate:"gt=0"`
	RefinementTimeout     time.Duration `json:"refinement_timeout" validate:"gt=0"`

	// Limits is keyed by provider name ("lit", "openrouter", ...).
	Limits map[string]ratelimit.Limits `json:"limits" validate:"dive"`

	// RedisURL enables the shared quota ledger when set.
	RedisURL  string `json:"redis_url" validate:"omitempty,url"`
	DBPath    string `json:"db_path"`
	LogLevel  string `json:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `json:"log_format" validate:"oneof=json pretty"`

	LLM llm.Config `json:"-"`
}

// Default returns the production defaults.
func Default() *Config {
	cfg := &Config{
		EnableRefinement:      true,
		FallbackToOriginal:    true,
		EnableFallback:        true,
		EnableValidation:      true,
		RequireMinimumQuality: false,
		MinimumQualityScore:   60,
		MaxGenerationAttempts: 3,
		MaxProcessingTime:     120 * time.Second,
		GenerationTimeout:     60 * time.Second,
		RefinementTimeout:     30 * time.Second,
		LogLevel:              "info",
		LogFormat:             "pretty",
		LLM:                   llm.DefaultConfig(),
	}
	cfg.Limits = defaultLimits(cfg.LLM)
	return cfg
}

// defaultLimits budgets the self-hosted generator and every refiner. The
// refiners' cost per token comes from the pricing table.
func defaultLimits(lc llm.Config) map[string]ratelimit.Limits {
	refiner := func(model string) ratelimit.Limits {
		return ratelimit.Limits{
			RequestsPerMinute: 20,
			RequestsPerDay:    1000,
			TokensPerMinute:   40_000,
			TokensPerDay:      1_000_000,
			CostPerToken:      llm.CostPerToken(model, 0.000002),
			MaxDailyCost:      5,
		}
	}
	return map[string]ratelimit.Limits{
		"lit": {
			RequestsPerMinute: 60,
			RequestsPerDay:    5000,
			TokensPerMinute:   50_000,
			TokensPerDay:      2_000_000,
			CostPerToken:      0.000001,
			MaxDailyCost:      10,
		},
		llm.RefinerOpenRouter: refiner(lc.OpenRouter.Model),
		llm.RefinerOpenAI:     refiner(lc.OpenAI.Model),
		llm.RefinerAnthropic:  refiner(lc.Anthropic.Model),
		llm.RefinerGemini:     refiner(lc.Gemini.Model),
	}
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment variables
// win over it.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional
	return FromEnv()
}

// FromEnv builds a Config from the current environment and validates it.
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.LLM = llm.ConfigFromEnv()
	if os.Getenv(envPrefix+"REFINER") == "" {
		llm.DiscoverRefiner(&cfg.LLM)
	}
	cfg.Limits = defaultLimits(cfg.LLM)

	var errs []string
	parseBool := func(dst *bool, key string) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	parseInt := func(dst *int, key string) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	parseFloat := func(dst *float64, key string) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	parseDuration := func(dst *time.Duration, key string) {
		if v, ok := lookup(key); ok {
			d, err := durationValue(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	parseBool(&cfg.EnableRefinement, "ENABLE_REFINEMENT")
	parseBool(&cfg.FallbackToOriginal, "FALLBACK_TO_ORIGINAL")
	parseBool(&cfg.EnableFallback, "ENABLE_FALLBACK")
	parseBool(&cfg.EnableValidation, "ENABLE_VALIDATION")
	parseBool(&cfg.RequireMinimumQuality, "REQUIRE_MINIMUM_QUALITY")
	parseBool(&cfg.StructuredRefinement, "STRUCTURED_REFINEMENT")
	parseInt(&cfg.MinimumQualityScore, "MINIMUM_QUALITY_SCORE")
	parseInt(&cfg.MaxGenerationAttempts, "MAX_GENERATION_ATTEMPTS")
	parseDuration(&cfg.MaxProcessingTime, "MAX_PROCESSING_TIME")
	parseDuration(&cfg.GenerationTimeout, "GENERATION_TIMEOUT")
	parseDuration(&cfg.RefinementTimeout, "REFINEMENT_TIMEOUT")

	for name, lim := range cfg.Limits {
		p := strings.ToUpper(name) + "_"
		parseInt(&lim.RequestsPerMinute, p+"RPM")
		parseInt(&lim.RequestsPerDay, p+"RPD")
		parseInt(&lim.TokensPerMinute, p+"TPM")
		parseInt(&lim.TokensPerDay, p+"TPD")
		parseFloat(&lim.CostPerToken, p+"COST_PER_TOKEN")
		parseFloat(&lim.MaxDailyCost, p+"MAX_DAILY_COST")
		cfg.Limits[name] = lim
	}

	if v, ok := lookup("REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := lookup("DB"); ok {
		cfg.DBPath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges. Provider credentials are checked
// separately by ValidateProviders, since commands that never call a
// provider do not need them.
func (c *Config) Validate() error {
	if err := validator.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ValidateProviders checks that the configured generator and refiner are
// usable. A refiner is only required when refinement is enabled.
func (c *Config) ValidateProviders() error {
	lc := c.LLM
	if !c.EnableRefinement {
		lc.Refiner = llm.RefinerNone
	}
	if err := lc.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// durationValue accepts Go durations ("90s") and bare milliseconds.
func durationValue(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}
