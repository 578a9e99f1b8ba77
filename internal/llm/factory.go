package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhisek/physiq/internal/store"
)

// NewGenerator creates the generation provider from configuration, wrapped
// with logging middleware. Retries are owned by the pipeline.
func NewGenerator(cfg Config, eventRepo store.EventRepo, logger zerolog.Logger) (Provider, error) {
	var base Provider
	switch cfg.Generator {
	case "lit":
		p, err := NewLITProvider(cfg.LIT)
		if err != nil {
			return nil, fmt.Errorf("initializing lit generator: %w", err)
		}
		base = p
	case "mock":
		base = NewRepeatingMockProvider(MockText(sampleGeneration))
	default:
		return nil, fmt.Errorf("unknown generator: %q", cfg.Generator)
	}
	return WithLogging(base, eventRepo, logger), nil
}

// NewRefiner creates the refinement provider from configuration, wrapped
// with logging middleware. It returns (nil, nil) when refinement is
// configured off.
func NewRefiner(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger zerolog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Refiner {
	case RefinerNone, "":
		return nil, nil
	case RefinerAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case RefinerOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case RefinerGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case RefinerOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case RefinerMock:
		base = NewRepeatingMockProvider(MockText(sampleRefinement))
	default:
		return nil, fmt.Errorf("unknown refiner: %q", cfg.Refiner)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s refiner: %w", cfg.Refiner, err)
	}
	return WithLogging(base, eventRepo, logger), nil
}

// Canned replies for the mock providers, used for offline runs.
const (
	sampleGeneration = `{"generated_text": "QUESTION: A cyclist accelerates uniformly from rest to 12 m/s in 4.0 s. What is the acceleration of the cyclist?\nA) 0.33 m/s²\nB) 3.0 m/s²\nC) 12 m/s²\nD) 48 m/s²\nANSWER: B"}`

	sampleRefinement = `Refined Question: A cyclist accelerates uniformly from rest to 12 m/s in a time of 4.0 s. What is the magnitude of the acceleration of the cyclist?
A) 0.33 m/s²
B) 3.0 m/s²
C) 12 m/s²
D) 48 m/s²
CORRECT_ANSWER: B
EXPLANATION: a = Δv/Δt = 12 m/s ÷ 4.0 s = 3.0 m/s².
IMPROVEMENTS_MADE:
- Stated the time interval explicitly
- Asked for the magnitude of the acceleration`
)
