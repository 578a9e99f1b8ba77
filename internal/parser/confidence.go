package parser

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	numberRe = regexp.MustCompile(`\d`)

	// A number followed by an SI or common physics unit. Longer units come
	// first so the alternation prefers them. The trailing class stands in
	// for \b, which does not work after Ω or °C.
	unitRe = regexp.MustCompile(`\d(?:\.\d+)?\s*(?:[x×]\s*10\^?[-−]?\d+\s*)?` +
		`(?:m/s²|m/s\^?2|m\s*s-[12]|m/s|km/h|km|cm|mm|nm|μm|kg|g|mol|ms|seconds?|s|min|h|` +
		`kN|N|kJ|MJ|J|MeV|keV|eV|kW|MW|W|kV|mV|V|mA|A|kΩ|MΩ|Ω|ohms?|kHz|MHz|Hz|K|°C|kPa|Pa|T|m)` +
		`(?:[^A-Za-z0-9]|$)`)
)

// confidence scores how well-formed a parsed question looks.
func confidence(stem string, options []string, hasHeader, hasAnswer bool) float64 {
	c := 0.5
	if hasHeader && hasAnswer {
		c += 0.2
	}
	if strings.Contains(stem, "?") {
		c += 0.1
	}
	if numberRe.MatchString(stem) {
		c += 0.1
	}
	if hasUnit(stem, options) {
		c += 0.1
	}
	if averageLength(options) < 5 {
		c -= 0.2
	}
	if hasFoldedDuplicate(options) {
		c -= 0.3
	}

	c = math.Round(c*100) / 100
	return min(max(c, 0.1), 1.0)
}

func hasUnit(stem string, options []string) bool {
	if unitRe.MatchString(stem) {
		return true
	}
	for _, o := range options {
		if unitRe.MatchString(o) {
			return true
		}
	}
	return false
}

func averageLength(options []string) float64 {
	if len(options) == 0 {
		return 0
	}
	total := 0
	for _, o := range options {
		total += utf8.RuneCountInString(o)
	}
	return float64(total) / float64(len(options))
}

func hasFoldedDuplicate(options []string) bool {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		k := strings.ToLower(strings.TrimSpace(o))
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}
