package validation

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/physiq/internal/topics"
)

// speedOfLight is the rounded value questions are expected to use.
const speedOfLight = 3.0e8

var (
	efficiencyRe  = regexp.MustCompile(`(?i)efficien\w*[^.?%]*?(\d+(?:\.\d+)?)\s*%`)
	fractionOfCRe = regexp.MustCompile(`(?:^|[^0-9A-Za-z.])(\d+(?:\.\d+)?)\s*c(?:[^A-Za-z0-9]|$)`)
	motionRe      = regexp.MustCompile(`(?i)\b(?:velocity|speed|accelerat\w*|decelerat\w*)\b`)
	timeRefRe     = regexp.MustCompile(`(?i)\b(?:time|times|seconds?|minutes?|hours?|after|during|interval|duration|period|until|t\s*=)\b`)
	gasLawRe      = regexp.MustCompile(`(?i)\b(?:pressure|volume|ideal gas|moles?)\b`)
)

// topicRule is a topic-specific plausibility check.
type topicRule func(text string, ms []measurement, out *Verdict)

var topicRules = map[string][]topicRule{
	"kinematics":                  {requireTimeReference},
	"gas-laws":                    {requireKelvin},
	"thermodynamics":              {requireKelvin},
	"galilean-special-relativity": {boundFractionOfC},
	"relativity":                  {boundFractionOfC},
}

// PhysicsValidator checks physical plausibility. It is stateless.
type PhysicsValidator struct{}

func (v *PhysicsValidator) Name() string { return "physics" }

func (v *PhysicsValidator) Validate(c Candidate, t topics.Topic) PhysicsVerdict {
	var out Verdict

	all := strings.Join(append([]string{c.Text}, c.Options...), "\n")
	ms := scanMeasurements(all)

	for _, m := range ms {
		checkMeasurement(m, t, &out)
	}

	for _, m := range efficiencyRe.FindAllStringSubmatch(all, -1) {
		if pct, err := strconv.ParseFloat(m[1], 64); err == nil && pct > 100 {
			out.fail("efficiency_exceeds_unity", SeverityHigh, "efficiency of %s%% is impossible", m[1])
		}
	}

	for _, rule := range topicRules[t.ID] {
		rule(c.Text, scanMeasurements(c.Text), &out)
	}

	out.Valid = !out.HasHigh()
	return PhysicsVerdict{Verdict: out, Tier: tierOf(out)}
}

func checkMeasurement(m measurement, t topics.Topic, out *Verdict) {
	si := m.si()
	switch m.unit.q {
	case topics.QuantityVelocity:
		if math.Abs(si) > speedOfLight {
			out.fail("exceeds_light_speed", SeverityHigh, "%s exceeds the speed of light", m.raw)
			return
		}
	case topics.QuantityMass, topics.QuantityFrequency, topics.QuantityResistance:
		if m.negative {
			out.fail("negative_quantity", SeverityHigh, "%s cannot be negative", m.raw)
			return
		}
	case topics.QuantityTemperature:
		if si < 0 {
			out.fail("below_absolute_zero", SeverityHigh, "%s is below absolute zero", m.raw)
			return
		}
	}

	r, ok := t.RangeFor(m.unit.q)
	if !ok || m.unit.q == topics.QuantityTemperature {
		return
	}
	if !r.Contains(math.Abs(si)) {
		out.warn("unusual_magnitude", SeverityMedium,
			"Use magnitudes typical for "+topicLabel(t)+".",
			"%s is outside the expected %s range", m.raw, m.unit.q)
	}
}

func topicLabel(t topics.Topic) string {
	if t.Name != "" {
		return t.Name
	}
	return "this topic"
}

// tierOf grades a verdict: any high error is major, no errors with at most
// two medium warnings is accurate, anything else is minor.
func tierOf(v Verdict) Tier {
	if v.HasHigh() {
		return TierMajorErrors
	}
	medium := 0
	for _, w := range v.Warnings {
		if w.Severity == SeverityMedium || w.Severity == SeverityHigh {
			medium++
		}
	}
	if len(v.Errors) == 0 && medium <= 2 {
		return TierAccurate
	}
	return TierMinorIssues
}

func requireTimeReference(text string, ms []measurement, out *Verdict) {
	if !motionRe.MatchString(text) && !hasQuantity(ms, topics.QuantityVelocity, topics.QuantityAcceleration) {
		return
	}
	if timeRefRe.MatchString(text) || hasQuantity(ms, topics.QuantityTime) {
		return
	}
	out.fail("missing_time_reference", SeverityMedium, "velocity or acceleration is used without a time reference")
	out.suggest("State the time interval over which the motion takes place.")
}

func hasQuantity(ms []measurement, qs ...topics.Quantity) bool {
	for _, m := range ms {
		if slices.Contains(qs, m.unit.q) {
			return true
		}
	}
	return false
}

func requireKelvin(text string, ms []measurement, out *Verdict) {
	if !gasLawRe.MatchString(text) {
		return
	}
	for _, m := range ms {
		if m.unit.symbol == "°C" {
			out.warn("celsius_in_gas_law", SeverityLow, "Convert temperatures to kelvin for gas law calculations.",
				"%s is given in degrees Celsius", m.raw)
			return
		}
	}
}

func boundFractionOfC(text string, _ []measurement, out *Verdict) {
	for _, m := range fractionOfCRe.FindAllStringSubmatch(text, -1) {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil && f >= 1 {
			out.fail("exceeds_light_speed", SeverityHigh, "a speed of %sc is not attainable by a massive body", m[1])
		}
	}
}
