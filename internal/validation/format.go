package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/physiq/internal/question"
)

const (
	minTextLength   = 10
	maxTextLength   = 1000
	maxOptionLength = 300
)

var (
	letterPrefixRe = regexp.MustCompile(`^\(?([A-Da-d])[).:][ \t]`)

	// Plain decimal numbers, excluding ones already in scientific notation.
	plainNumberRe = regexp.MustCompile(`(?:^|[^0-9.eE^])(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)(?:[^0-9.eE×x^]|$)`)
)

// FormatValidator checks structural completeness. It is stateless.
type FormatValidator struct{}

func (v *FormatValidator) Name() string { return "format" }

func (v *FormatValidator) Validate(c Candidate) Verdict {
	var out Verdict

	text := strings.TrimSpace(c.Text)
	switch n := utf8.RuneCountInString(text); {
	case n == 0:
		out.fail("missing_question", SeverityHigh, "question text is empty")
	case n < minTextLength:
		out.fail("question_too_short", SeverityHigh, "question text has %d characters, need at least %d", n, minTextLength)
	case n > maxTextLength:
		out.warn("question_too_long", SeverityLow, "Shorten the stem to the essential information.",
			"question text has %d characters", n)
	}

	if len(c.Options) != question.OptionCount {
		out.fail("wrong_option_count", SeverityHigh, "Expected 4 options, found %d", len(c.Options))
	}

	seen := make(map[string]int, len(c.Options))
	for i, opt := range c.Options {
		label := optionLabel(i)
		opt = strings.TrimSpace(opt)
		if opt == "" {
			out.fail("empty_option", SeverityHigh, "option %s is empty", label)
			continue
		}
		if j, dup := seen[opt]; dup {
			out.fail("duplicate_options", SeverityHigh, "options %s and %s are identical", optionLabel(j), label)
		}
		seen[opt] = i

		if m := letterPrefixRe.FindStringSubmatch(opt); m != nil {
			if l, _ := question.ParseLetter(m[1]); l.Index() != i {
				out.warn("mislettered_option", SeverityMedium, "Remove letter prefixes from option text.",
					"option %s is labelled %s", label, strings.ToUpper(m[1]))
			}
		}
		if utf8.RuneCountInString(opt) > maxOptionLength {
			out.warn("option_too_long", SeverityLow, "Keep options short enough to compare at a glance.",
				"option %s has %d characters", label, utf8.RuneCountInString(opt))
		}
	}

	switch {
	case !c.Answer.Valid():
		out.fail("invalid_answer", SeverityHigh, "answer %q is not one of A, B, C, D", c.Answer)
	case c.Answer.Index() >= len(c.Options):
		out.fail("answer_out_of_range", SeverityHigh, "answer %s has no matching option", c.Answer)
	}

	if text != "" && !strings.Contains(text, "?") {
		out.warn("missing_question_mark", SeverityLow, "Phrase the stem as a direct question ending in '?'.",
			"question text has no question mark")
	}

	if hasBareNumbers(text, c.Options) {
		out.warn("missing_units", SeverityMedium, "Give every physical value an SI unit.",
			"numeric values appear without units")
	}

	for _, n := range extremePlainNumbers(text, c.Options) {
		out.warn("needs_scientific_notation", SeverityLow, "Write very large or small values in scientific notation.",
			"%s should be written in scientific notation", n)
	}

	out.Valid = len(out.Errors) == 0
	return out
}

func optionLabel(i int) string {
	if i >= 0 && i < question.OptionCount {
		return string(question.Letters()[i])
	}
	return strconv.Itoa(i + 1)
}

// hasBareNumbers reports whether the stem carries numbers but nothing in the
// question carries a unit.
func hasBareNumbers(text string, options []string) bool {
	if !strings.ContainsAny(text, "0123456789") {
		return false
	}
	if len(scanMeasurements(text)) > 0 {
		return false
	}
	for _, o := range options {
		if len(scanMeasurements(o)) > 0 {
			return false
		}
	}
	return true
}

func extremePlainNumbers(text string, options []string) []string {
	var out []string
	for _, s := range append([]string{text}, options...) {
		for _, m := range plainNumberRe.FindAllStringSubmatch(s, -1) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil || v == 0 {
				continue
			}
			if math.Abs(v) >= 1e6 || math.Abs(v) < 1e-3 {
				out = append(out, m[1])
			}
		}
	}
	return out
}
