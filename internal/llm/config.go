package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Refiner names accepted by Config.Refiner.
const (
	RefinerOpenRouter = "openrouter"
	RefinerOpenAI     = "openai"
	RefinerAnthropic  = "anthropic"
	RefinerGemini     = "gemini"
	RefinerMock       = "mock"
	RefinerNone       = "none"
)

// Config holds configuration for the generation and refinement providers.
type Config struct {
	// Generator selects the generation provider. Values: "lit", "mock".
	Generator string

	// Refiner selects the refinement provider.
	// Values: "openrouter", "openai", "anthropic", "gemini", "mock", "none".
	Refiner string

	LIT        LITConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
}

// LITConfig configures the fine-tuned generation endpoint.
type LITConfig struct {
	URL          string
	HealthURL    string // Default: URL
	APIKey       string
	Model        string // Label recorded in events. Default: "lit"
	MaxNewTokens int    // Default: 500
	Temperature  float64
	TopP         float64
	Timeout      time.Duration // Default: 30s
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Gateway or proxy in front of the API.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string // Optional. Gateway or proxy in front of the API.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "openai/gpt-4o-mini"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Generator: "lit",
		Refiner:   RefinerOpenRouter,
		LIT: LITConfig{
			Model:        "llama-ib-physics",
			MaxNewTokens: defaultLITMaxNewTokens,
			Temperature:  defaultLITTemperature,
			TopP:         defaultLITTopP,
			Timeout:      defaultLITTimeout,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
	}
}

// ConfigFromEnv builds a Config from PHYSIQ_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setString(&cfg.Generator, "PHYSIQ_GENERATOR")
	setString(&cfg.Refiner, "PHYSIQ_REFINER")

	setString(&cfg.LIT.URL, "PHYSIQ_LIT_URL")
	setString(&cfg.LIT.HealthURL, "PHYSIQ_LIT_HEALTH_URL")
	setString(&cfg.LIT.APIKey, "PHYSIQ_LIT_API_KEY")
	setString(&cfg.LIT.Model, "PHYSIQ_LIT_MODEL")
	if v, err := strconv.Atoi(os.Getenv("PHYSIQ_LIT_MAX_NEW_TOKENS")); err == nil && v > 0 {
		cfg.LIT.MaxNewTokens = v
	}
	if d, err := time.ParseDuration(os.Getenv("PHYSIQ_LIT_TIMEOUT")); err == nil && d > 0 {
		cfg.LIT.Timeout = d
	}

	setString(&cfg.Anthropic.APIKey, "PHYSIQ_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "PHYSIQ_ANTHROPIC_MODEL")
	setString(&cfg.Anthropic.BaseURL, "PHYSIQ_ANTHROPIC_BASE_URL")

	setString(&cfg.OpenAI.APIKey, "PHYSIQ_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "PHYSIQ_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "PHYSIQ_OPENAI_BASE_URL")

	setString(&cfg.Gemini.APIKey, "PHYSIQ_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "PHYSIQ_GEMINI_MODEL")
	setString(&cfg.Gemini.BaseURL, "PHYSIQ_GEMINI_BASE_URL")

	setString(&cfg.OpenRouter.APIKey, "PHYSIQ_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "PHYSIQ_OPENROUTER_MODEL")
	setString(&cfg.OpenRouter.BaseURL, "PHYSIQ_OPENROUTER_BASE_URL")

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverRefiner picks a refiner from standard API key env vars in
// priority order (OpenRouter → OpenAI → Anthropic → Gemini) when no
// PHYSIQ_* key is set for the configured one. It reports whether a key
// was found.
func DiscoverRefiner(cfg *Config) bool {
	if refinerKey(*cfg) != "" {
		return true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Refiner = RefinerOpenRouter
		cfg.OpenRouter.APIKey = k
		return true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Refiner = RefinerOpenAI
		cfg.OpenAI.APIKey = k
		return true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Refiner = RefinerAnthropic
		cfg.Anthropic.APIKey = k
		return true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Refiner = RefinerGemini
		cfg.Gemini.APIKey = k
		return true
	}
	return false
}

func refinerKey(c Config) string {
	switch c.Refiner {
	case RefinerOpenRouter:
		return c.OpenRouter.APIKey
	case RefinerOpenAI:
		return c.OpenAI.APIKey
	case RefinerAnthropic:
		return c.Anthropic.APIKey
	case RefinerGemini:
		return c.Gemini.APIKey
	case RefinerMock, RefinerNone:
		return "n/a"
	}
	return ""
}

// Validate checks that both selected providers are usable.
func (c Config) Validate() error {
	switch c.Generator {
	case "lit":
		if c.LIT.URL == "" {
			return fmt.Errorf("PHYSIQ_LIT_URL is required for the lit generator")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown generator: %q", c.Generator)
	}

	switch c.Refiner {
	case RefinerAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("PHYSIQ_ANTHROPIC_API_KEY is required for the anthropic refiner")
		}
	case RefinerOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("PHYSIQ_OPENAI_API_KEY is required for the openai refiner")
		}
	case RefinerGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("PHYSIQ_GEMINI_API_KEY is required for the gemini refiner")
		}
	case RefinerOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("PHYSIQ_OPENROUTER_API_KEY is required for the openrouter refiner")
		}
	case RefinerMock, RefinerNone:
		// No API key needed.
	default:
		return fmt.Errorf("unknown refiner: %q", c.Refiner)
	}
	return nil
}
