package monitoring

import (
	"fmt"
	"time"
)

// Status is a tri-state health value.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Indicator is one health signal derived from recent activity.
type Indicator struct {
	Name   string  `json:"name"`
	Status Status  `json:"status"`
	Value  float64 `json:"value"`
	Detail string  `json:"detail"`
}

// Thresholds for the indicators.
const (
	healthySuccessRate  = 0.8
	degradedSuccessRate = 0.5

	healthyLatency  = 30 * time.Second
	degradedLatency = 60 * time.Second

	healthyFallbackRate  = 0.1
	degradedFallbackRate = 0.3
)

// Indicators reports success rate, average latency and fallback rate over
// the last hour. With no recent generations every indicator is healthy.
func (s *Service) Indicators() []Indicator {
	outs, errs := s.recent(indicatorWindow)

	if len(outs) == 0 {
		return []Indicator{
			{Name: "success_rate", Status: StatusHealthy, Value: 1, Detail: "no generations in the last hour"},
			{Name: "average_latency", Status: StatusHealthy, Detail: "no generations in the last hour"},
			{Name: "fallback_rate", Status: StatusHealthy, Detail: "no generations in the last hour"},
		}
	}

	var ok, fallbacks int
	var total time.Duration
	for _, o := range outs {
		if o.Success {
			ok++
		}
		if o.Fallback {
			fallbacks++
		}
		total += o.Duration
	}
	n := len(outs)
	rate := float64(ok) / float64(n)
	avg := total / time.Duration(n)
	fbRate := float64(fallbacks) / float64(n)

	return []Indicator{
		{
			Name:   "success_rate",
			Status: grade(rate >= healthySuccessRate, rate >= degradedSuccessRate),
			Value:  rate,
			Detail: fmt.Sprintf("%d of %d generations succeeded, %d errors recorded", ok, n, len(errs)),
		},
		{
			Name:   "average_latency",
			Status: grade(avg <= healthyLatency, avg <= degradedLatency),
			Value:  avg.Seconds(),
			Detail: fmt.Sprintf("average processing time %s", avg.Round(time.Millisecond)),
		},
		{
			Name:   "fallback_rate",
			Status: grade(fbRate <= healthyFallbackRate, fbRate <= degradedFallbackRate),
			Value:  fbRate,
			Detail: fmt.Sprintf("%d of %d questions served from the static bank", fallbacks, n),
		},
	}
}

func grade(healthy, degraded bool) Status {
	switch {
	case healthy:
		return StatusHealthy
	case degraded:
		return StatusDegraded
	}
	return StatusUnhealthy
}

// Overall combines statuses: healthy if all are healthy, unhealthy if none
// are, degraded otherwise.
func Overall(statuses ...Status) Status {
	healthy := 0
	for _, st := range statuses {
		if st == StatusHealthy {
			healthy++
		}
	}
	switch {
	case len(statuses) == 0 || healthy == len(statuses):
		return StatusHealthy
	case healthy == 0:
		return StatusUnhealthy
	}
	return StatusDegraded
}
