package pipeline

import "time"

// Options toggles the optional stages and bounds the work done per request.
type Options struct {
	EnableRefinement      bool
	FallbackToOriginal    bool
	EnableFallback        bool
	EnableValidation      bool
	RequireMinimumQuality bool

	// StructuredRefinement asks the refiner for JSON conforming to
	// RefinedQuestionSchema instead of the labeled text layout.
	StructuredRefinement bool

	MinimumQualityScore   int
	MaxGenerationAttempts int

	MaxProcessingTime time.Duration
	GenerationTimeout time.Duration
	RefinementTimeout time.Duration
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		EnableRefinement:      true,
		FallbackToOriginal:    true,
		EnableFallback:        true,
		EnableValidation:      true,
		MinimumQualityScore:   60,
		MaxGenerationAttempts: 3,
		MaxProcessingTime:     120 * time.Second,
		GenerationTimeout:     60 * time.Second,
		RefinementTimeout:     30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxGenerationAttempts <= 0 {
		o.MaxGenerationAttempts = d.MaxGenerationAttempts
	}
	if o.MaxProcessingTime <= 0 {
		o.MaxProcessingTime = d.MaxProcessingTime
	}
	if o.GenerationTimeout <= 0 {
		o.GenerationTimeout = d.GenerationTimeout
	}
	if o.RefinementTimeout <= 0 {
		o.RefinementTimeout = d.RefinementTimeout
	}
	return o
}
