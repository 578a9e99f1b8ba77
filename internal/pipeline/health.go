package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/monitoring"
)

const pingTimeout = 5 * time.Second

// Service names reported by HealthCheck.
const (
	ServiceGeneration = "generation"
	ServiceRefinement = "refinement"
	ServiceValidation = "validation"
)

// Health is a point-in-time snapshot of the pipeline's dependencies.
type Health struct {
	Status     monitoring.Status            `json:"status"`
	Services   map[string]monitoring.Status `json:"services"`
	Details    []string                     `json:"details,omitempty"`
	Indicators []monitoring.Indicator       `json:"indicators"`
	CheckedAt  time.Time                    `json:"checked_at"`
}

// HealthCheck checks each dependency independently. The overall status is
// healthy when all are, unhealthy when none are, and degraded otherwise.
// Recent-traffic indicators are reported alongside but do not change it.
func (o *Orchestrator) HealthCheck(ctx context.Context) Health {
	h := Health{
		Services:  make(map[string]monitoring.Status, 3),
		CheckedAt: o.now(),
	}

	h.Services[ServiceGeneration] = o.checkProvider(ctx, &h, ServiceGeneration, o.generator)

	switch {
	case o.refiner != nil:
		h.Services[ServiceRefinement] = o.checkProvider(ctx, &h, ServiceRefinement, o.refiner)
	case o.opts.EnableRefinement:
		h.Services[ServiceRefinement] = monitoring.StatusUnhealthy
		h.Details = append(h.Details, "refinement: enabled but no provider configured")
	default:
		h.Services[ServiceRefinement] = monitoring.StatusHealthy
		h.Details = append(h.Details, "refinement: disabled")
	}

	// Validation runs in process.
	h.Services[ServiceValidation] = monitoring.StatusHealthy

	h.Status = monitoring.Overall(
		h.Services[ServiceGeneration],
		h.Services[ServiceRefinement],
		h.Services[ServiceValidation],
	)

	h.Indicators = o.monitor.Indicators()
	for _, ind := range h.Indicators {
		if ind.Status != monitoring.StatusHealthy {
			h.Details = append(h.Details, fmt.Sprintf("%s: %s (%s)", ind.Name, ind.Status, ind.Detail))
		}
	}
	return h
}

// checkProvider pings p. A provider that cannot be pinged is reported degraded,
// since its availability is unknown.
func (o *Orchestrator) checkProvider(ctx context.Context, h *Health, name string, p llm.Provider) monitoring.Status {
	pinger, ok := p.(llm.Pinger)
	if !ok {
		h.Details = append(h.Details, fmt.Sprintf("%s: %s does not support health checks", name, p.ModelID()))
		return monitoring.StatusDegraded
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := pinger.Ping(ctx)
	if errors.Is(err, llm.ErrPingUnsupported) {
		h.Details = append(h.Details, fmt.Sprintf("%s: %s does not support health checks", name, p.ModelID()))
		return monitoring.StatusDegraded
	}
	if err != nil {
		h.Details = append(h.Details, fmt.Sprintf("%s: %s unavailable: %v", name, p.ModelID(), err))
		return monitoring.StatusUnhealthy
	}
	return monitoring.StatusHealthy
}
