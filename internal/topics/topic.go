// Package topics holds the fixed IB physics curriculum taxonomy used to
// build prompts, score topic relevance and bound physical magnitudes.
package topics

import (
	"fmt"
	"slices"
)

// Theme is a curriculum theme grouping related topics.
type Theme string

const (
	ThemeSpaceTimeMotion Theme = "A"
	ThemeParticulate     Theme = "B"
	ThemeWaves           Theme = "C"
	ThemeFields          Theme = "D"
	ThemeNuclearQuantum  Theme = "E"
	ThemeOptions         Theme = "options"
)

// AllThemes returns all themes in display order.
func AllThemes() []Theme {
	return []Theme{
		ThemeSpaceTimeMotion,
		ThemeParticulate,
		ThemeWaves,
		ThemeFields,
		ThemeNuclearQuantum,
		ThemeOptions,
	}
}

// ThemeDisplayName returns a human-readable name for a theme.
func ThemeDisplayName(t Theme) string {
	switch t {
	case ThemeSpaceTimeMotion:
		return "Theme A: Space, time and motion"
	case ThemeParticulate:
		return "Theme B: The particulate nature of matter"
	case ThemeWaves:
		return "Theme C: Wave behaviour"
	case ThemeFields:
		return "Theme D: Fields"
	case ThemeNuclearQuantum:
		return "Theme E: Nuclear and quantum physics"
	case ThemeOptions:
		return "Option Topics"
	default:
		return string(t)
	}
}

// Quantity is a physical quantity recognised by the unit scanner.
type Quantity string

const (
	QuantityLength       Quantity = "length"
	QuantityTime         Quantity = "time"
	QuantityVelocity     Quantity = "velocity"
	QuantityAcceleration Quantity = "acceleration"
	QuantityMass         Quantity = "mass"
	QuantityForce        Quantity = "force"
	QuantityEnergy       Quantity = "energy"
	QuantityPower        Quantity = "power"
	QuantityTemperature  Quantity = "temperature"
	QuantityFrequency    Quantity = "frequency"
	QuantityVoltage      Quantity = "voltage"
	QuantityCurrent      Quantity = "current"
	QuantityResistance   Quantity = "resistance"
	QuantityPressure     Quantity = "pressure"
)

// Range is an inclusive plausible magnitude interval in SI units.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Topic is a single curriculum topic.
type Topic struct {
	ID    string
	Name  string
	Theme Theme

	// Context is a one-sentence description used in generation prompts.
	Context string

	// Keywords drive the compliance validator's relevance score.
	Keywords []string

	// HigherLevelOnly marks HL topics that require analytical questions.
	HigherLevelOnly bool

	// Ranges bound the magnitudes a question on this topic should use.
	// Quantities without an entry fall back to DefaultRanges.
	Ranges map[Quantity]Range
}

// RangeFor returns the expected magnitude range for q on this topic.
func (t Topic) RangeFor(q Quantity) (Range, bool) {
	if r, ok := t.Ranges[q]; ok {
		return r, true
	}
	r, ok := DefaultRanges[q]
	return r, ok
}

// DefaultRanges are the school-physics magnitude bounds used when a topic
// has no specific range for a quantity.
var DefaultRanges = map[Quantity]Range{
	QuantityLength:       {Min: 1e-15, Max: 1e26},
	QuantityTime:         {Min: 1e-12, Max: 1e18},
	QuantityVelocity:     {Min: 0, Max: 3e8},
	QuantityAcceleration: {Min: 0, Max: 1e6},
	QuantityMass:         {Min: 1e-31, Max: 1e42},
	QuantityForce:        {Min: 0, Max: 1e12},
	QuantityEnergy:       {Min: 0, Max: 1e45},
	QuantityPower:        {Min: 0, Max: 1e27},
	QuantityTemperature:  {Min: 0, Max: 1e8},
	QuantityFrequency:    {Min: 0, Max: 1e25},
	QuantityVoltage:      {Min: 0, Max: 1e9},
	QuantityCurrent:      {Min: 0, Max: 1e5},
	QuantityResistance:   {Min: 0, Max: 1e12},
	QuantityPressure:     {Min: 0, Max: 1e12},
}

// index holds the taxonomy with precomputed lookups.
type index struct {
	topics  []Topic
	byID    map[string]*Topic
	byTheme map[Theme][]Topic
}

// idx is the package-level taxonomy, built from the seed in init().
var idx *index

func buildIndex(all []Topic) *index {
	ix := &index{
		topics:  all,
		byID:    make(map[string]*Topic, len(all)),
		byTheme: make(map[Theme][]Topic),
	}
	for i := range ix.topics {
		t := &ix.topics[i]
		ix.byID[t.ID] = t
		ix.byTheme[t.Theme] = append(ix.byTheme[t.Theme], *t)
	}
	return ix
}

func init() {
	idx = buildIndex(seedTopics())
}

// Get returns a topic by ID, or an error if it is not part of the taxonomy.
func Get(id string) (Topic, error) {
	t, ok := idx.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("topic not found: %q", id)
	}
	return *t, nil
}

// Lookup returns the topic for id, or a generic topic named after id when it
// is not part of the taxonomy.
func Lookup(id string) Topic {
	if t, err := Get(id); err == nil {
		return t
	}
	return Topic{ID: id, Name: id, Context: "General IB Physics topic"}
}

// All returns every topic in seed order.
func All() []Topic {
	return slices.Clone(idx.topics)
}

// ByTheme returns the topics in a theme, in seed order.
func ByTheme(t Theme) []Topic {
	return slices.Clone(idx.byTheme[t])
}
