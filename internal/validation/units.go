package validation

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/physiq/internal/topics"
)

// unit maps a written symbol to a quantity and its SI conversion.
type unit struct {
	symbol string
	q      topics.Quantity
	scale  float64
	offset float64
}

var units = []unit{
	{"m/s²", topics.QuantityAcceleration, 1, 0},
	{"m/s^2", topics.QuantityAcceleration, 1, 0},
	{"m s^-2", topics.QuantityAcceleration, 1, 0},
	{"m s-2", topics.QuantityAcceleration, 1, 0},
	{"ms^-2", topics.QuantityAcceleration, 1, 0},
	{"ms-2", topics.QuantityAcceleration, 1, 0},
	{"m/s", topics.QuantityVelocity, 1, 0},
	{"m s^-1", topics.QuantityVelocity, 1, 0},
	{"m s-1", topics.QuantityVelocity, 1, 0},
	{"ms^-1", topics.QuantityVelocity, 1, 0},
	{"ms-1", topics.QuantityVelocity, 1, 0},
	{"km/h", topics.QuantityVelocity, 1 / 3.6, 0},
	{"km", topics.QuantityLength, 1e3, 0},
	{"cm", topics.QuantityLength, 1e-2, 0},
	{"mm", topics.QuantityLength, 1e-3, 0},
	{"μm", topics.QuantityLength, 1e-6, 0},
	{"nm", topics.QuantityLength, 1e-9, 0},
	{"m", topics.QuantityLength, 1, 0},
	{"kg", topics.QuantityMass, 1, 0},
	{"g", topics.QuantityMass, 1e-3, 0},
	{"ms", topics.QuantityTime, 1e-3, 0},
	{"min", topics.QuantityTime, 60, 0},
	{"s", topics.QuantityTime, 1, 0},
	{"h", topics.QuantityTime, 3600, 0},
	{"kN", topics.QuantityForce, 1e3, 0},
	{"N", topics.QuantityForce, 1, 0},
	{"MJ", topics.QuantityEnergy, 1e6, 0},
	{"kJ", topics.QuantityEnergy, 1e3, 0},
	{"J", topics.QuantityEnergy, 1, 0},
	{"MeV", topics.QuantityEnergy, 1.602e-13, 0},
	{"keV", topics.QuantityEnergy, 1.602e-16, 0},
	{"eV", topics.QuantityEnergy, 1.602e-19, 0},
	{"MW", topics.QuantityPower, 1e6, 0},
	{"kW", topics.QuantityPower, 1e3, 0},
	{"W", topics.QuantityPower, 1, 0},
	{"°C", topics.QuantityTemperature, 1, 273.15},
	{"K", topics.QuantityTemperature, 1, 0},
	{"MHz", topics.QuantityFrequency, 1e6, 0},
	{"kHz", topics.QuantityFrequency, 1e3, 0},
	{"Hz", topics.QuantityFrequency, 1, 0},
	{"kV", topics.QuantityVoltage, 1e3, 0},
	{"mV", topics.QuantityVoltage, 1e-3, 0},
	{"V", topics.QuantityVoltage, 1, 0},
	{"mA", topics.QuantityCurrent, 1e-3, 0},
	{"A", topics.QuantityCurrent, 1, 0},
	{"MΩ", topics.QuantityResistance, 1e6, 0},
	{"kΩ", topics.QuantityResistance, 1e3, 0},
	{"Ω", topics.QuantityResistance, 1, 0},
	{"ohms", topics.QuantityResistance, 1, 0},
	{"ohm", topics.QuantityResistance, 1, 0},
	{"kPa", topics.QuantityPressure, 1e3, 0},
	{"Pa", topics.QuantityPressure, 1, 0},
}

var (
	unitBySymbol = make(map[string]unit, len(units))
	measureRe    *regexp.Regexp
)

func init() {
	symbols := make([]string, 0, len(units))
	for _, u := range units {
		unitBySymbol[u.symbol] = u
		symbols = append(symbols, regexp.QuoteMeta(u.symbol))
	}
	// Longest first so the alternation prefers "m/s²" over "m/s" over "m".
	sort.SliceStable(symbols, func(i, j int) bool { return len(symbols[i]) > len(symbols[j]) })

	measureRe = regexp.MustCompile(`(?:^|[^0-9A-Za-z.])([-−]?)(\d+(?:\.\d+)?)` +
		`(?:[eE]([-+−]?\d+)|\s*[x×*]\s*10\^?\s*([-+−]?\d+))?` +
		`\s*(` + strings.Join(symbols, "|") + `)(?:[^A-Za-z0-9²]|$)`)
}

// measurement is a value with a unit found in question text.
type measurement struct {
	raw      string
	value    float64
	negative bool
	unit     unit
}

// si returns the value in SI base units (kelvin for temperature).
func (m measurement) si() float64 {
	return m.value*m.unit.scale + m.unit.offset
}

func scanMeasurements(s string) []measurement {
	var out []measurement
	for _, m := range measureRe.FindAllStringSubmatch(s, -1) {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		exp := m[3]
		if exp == "" {
			exp = m[4]
		}
		if exp != "" {
			e, err := strconv.Atoi(strings.ReplaceAll(exp, "−", "-"))
			if err != nil {
				continue
			}
			v *= math.Pow(10, float64(e))
		}
		neg := m[1] != ""
		if neg {
			v = -v
		}
		out = append(out, measurement{
			raw:      strings.TrimSpace(m[0]),
			value:    v,
			negative: neg,
			unit:     unitBySymbol[m[5]],
		})
	}
	return out
}
