// Package parser turns the free-form text returned by the generation and
// refinement models into structured questions. Every function here is pure.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/physiq/internal/question"
)

const minQuestionLength = 10

var (
	// Labeled stem header: "QUESTION:", "Question 1.", "Q:".
	headerRe = regexp.MustCompile(`(?i)^(?:question|q)[ \t]*\d*[ \t]*[:.)\-][ \t]*(.*)$`)

	// Primary option pass: "A) text", "B. text", "C: text", "(D) text".
	optionRe = regexp.MustCompile(`^(?:\(([A-D])\)|([A-D])[).:])[ \t]*(.*)$`)

	// Alternative per-line pass: "a) text", "Option B - text", "(c) text".
	altOptionRe = regexp.MustCompile(`(?i)^(?:option[ \t]+)?(?:\(([a-d])\)|([a-d])[ \t]*[-–:.)])[ \t]*(.*)$`)

	// Options run together on one line: "A) 1 m B) 2 m C) 3 m D) 4 m".
	inlineOptionRe = regexp.MustCompile(`(?:^|\s)(?:\(([A-D])\)|([A-D])\))\s*`)

	// Answer label variants: "ANSWER: B", "Correct answer is (C)", "CORRECT_ANSWER: D".
	answerLineRe = regexp.MustCompile(`(?i)^(?:the[ \t]+)?(?:correct[ _\t]*answer|correct[ _\t]+option|answer|correct|solution)[ \t]*(?:is\b[ \t]*:?|[:=\-])[ \t]*(.*)$`)

	leadingLetterRe = regexp.MustCompile(`^\(?([A-Z])\)?(?:[^A-Za-z0-9]|$)`)

	// Last-resort letter at the end of a sentence: "... it is B.", "... is (C)".
	trailingLetterRe = regexp.MustCompile(`(?:^|[\s(])([A-D])\)?[.)]?$`)

	// Metadata lines that never belong to the stem.
	labelLineRe = regexp.MustCompile(`(?i)^(?:topic|difficulty|subtopic|explanation|marks?|type|options?|choices?)[ \t]*:`)

	fenceRe    = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$")
	emphasisRe = regexp.MustCompile(`\*\*|__`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Parse extracts a RawQuestion from a generation response. rawText may be
// wrapped in a JSON envelope; it is unwrapped before parsing. The suggested
// answer defaults to A when the response carries no answer label.
func Parse(rawText, topic string) (question.RawQuestion, error) {
	text := clean(Normalize(Classify(rawText)))
	lines := splitLines(text)

	options, found, inlineAt := extractOptions(lines, text)

	stemLines := lines
	if inlineAt >= 0 {
		stemLines = splitLines(text[:inlineAt])
	}
	stem, hasHeader := extractStem(stemLines)

	if utf8.RuneCountInString(stem) < minQuestionLength {
		return question.RawQuestion{}, &ParseError{
			Kind:    KindMissingQuestion,
			Message: fmt.Sprintf("question text must be at least %d characters", minQuestionLength),
		}
	}

	if found != question.OptionCount {
		return question.RawQuestion{}, &ParseError{
			Kind:    KindWrongOptionCount,
			Message: fmt.Sprintf("Expected 4 options, found %d", found),
		}
	}

	seen := make(map[string]question.Letter, len(options))
	for i, opt := range options {
		letter := question.Letters()[i]
		if opt == "" {
			return question.RawQuestion{}, &ParseError{
				Kind:    KindEmptyOption,
				Message: fmt.Sprintf("option %s is empty", letter),
			}
		}
		if prev, dup := seen[opt]; dup {
			return question.RawQuestion{}, &ParseError{
				Kind:    KindDuplicateOptions,
				Message: fmt.Sprintf("options %s and %s are identical", prev, letter),
			}
		}
		seen[opt] = letter
	}

	answer, hasAnswer, err := extractAnswer(lines, options)
	if err != nil {
		return question.RawQuestion{}, err
	}

	return question.RawQuestion{
		Text:            stem,
		Options:         options,
		SuggestedAnswer: answer,
		Confidence:      confidence(stem, options, hasHeader, hasAnswer),
		Topic:           topic,
	}, nil
}

// clean strips markdown decoration that models add around labels.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = fenceRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

func collapse(parts []string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.Join(parts, " "), " "))
}

// matchOption reports whether line is an option line under the primary or
// alternative pattern.
func matchOption(line string, re *regexp.Regexp) (question.Letter, string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	l, ok := question.ParseLetter(raw)
	if !ok {
		return "", "", false
	}
	return l, strings.TrimSpace(m[3]), true
}

func isOptionLine(line string) bool {
	if _, _, ok := matchOption(line, optionRe); ok {
		return true
	}
	_, _, ok := matchOption(line, altOptionRe)
	return ok
}

func isAnswerLine(line string) bool {
	return answerLineRe.MatchString(line)
}

// extractStem returns the question stem and whether a labeled header was
// present. Without a header every non-label line before the first option
// or answer line is taken.
func extractStem(lines []string) (string, bool) {
	for i, line := range lines {
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		parts := []string{m[1]}
		for _, next := range lines[i+1:] {
			if isOptionLine(next) || isAnswerLine(next) || labelLineRe.MatchString(next) {
				break
			}
			parts = append(parts, next)
		}
		if stem := collapse(parts); stem != "" {
			return stem, true
		}
	}

	var parts []string
	for _, line := range lines {
		if isOptionLine(line) || isAnswerLine(line) {
			break
		}
		if labelLineRe.MatchString(line) {
			continue
		}
		parts = append(parts, line)
	}
	return collapse(parts), false
}

// extractOptions runs the primary pass, then the per-line alternative, then
// the inline pass. It returns the options in A-D order when exactly four
// were found, the best count otherwise, and the byte offset where inline
// options start (-1 when the inline pass was not used).
func extractOptions(lines []string, text string) ([]string, int, int) {
	primary := collectOptions(lines, optionRe)
	if len(primary) == question.OptionCount {
		return ordered(primary), question.OptionCount, -1
	}

	alt := collectOptions(lines, altOptionRe)
	if len(alt) == question.OptionCount {
		return ordered(alt), question.OptionCount, -1
	}

	inline, at := collectInline(text)
	if len(inline) == question.OptionCount {
		return ordered(inline), question.OptionCount, at
	}

	return nil, max(len(primary), len(alt), len(inline)), -1
}

func collectOptions(lines []string, re *regexp.Regexp) map[question.Letter]string {
	found := make(map[question.Letter]string, question.OptionCount)
	for _, line := range lines {
		l, text, ok := matchOption(line, re)
		if !ok {
			continue
		}
		if _, dup := found[l]; !dup {
			found[l] = text
		}
	}
	return found
}

func collectInline(text string) (map[question.Letter]string, int) {
	locs := inlineOptionRe.FindAllStringSubmatchIndex(text, -1)
	found := make(map[question.Letter]string, question.OptionCount)
	start := -1
	for i, loc := range locs {
		letterStart, letterEnd := loc[2], loc[3]
		if letterStart < 0 {
			letterStart, letterEnd = loc[4], loc[5]
		}
		l, ok := question.ParseLetter(text[letterStart:letterEnd])
		if !ok {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := text[loc[1]:end]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[:nl]
		}
		if _, dup := found[l]; !dup {
			found[l] = strings.TrimSpace(body)
			if start < 0 {
				start = loc[0]
			}
		}
	}
	return found, start
}

func ordered(m map[question.Letter]string) []string {
	out := make([]string, 0, question.OptionCount)
	for _, l := range question.Letters() {
		out = append(out, m[l])
	}
	return out
}

// extractAnswer finds the first answer label and resolves it to a letter.
// A label whose value is neither a letter nor an option's text is an
// invalid_answer_format error. No label yields A as a placeholder.
func extractAnswer(lines []string, options []string) (question.Letter, bool, error) {
	for i, line := range lines {
		m := answerLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" && i+1 < len(lines) {
			value = lines[i+1]
		}
		if l, ok := resolveAnswer(value, options); ok {
			return l, true, nil
		}
		return "", true, &ParseError{
			Kind:    KindInvalidAnswerFormat,
			Message: fmt.Sprintf("answer %q is not one of A, B, C, D", value),
		}
	}
	return question.LetterA, false, nil
}

// resolveAnswer reads a letter from an answer value. A leading letter wins,
// then a bare letter, then an option's text, then a nested answer phrase
// ("The correct answer is B"), then a trailing letter.
func resolveAnswer(value string, options []string) (question.Letter, bool) {
	value = strings.TrimSpace(value)
	if m := leadingLetterRe.FindStringSubmatch(value); m != nil {
		if l, ok := question.ParseLetter(m[1]); ok {
			return l, true
		}
	}
	if len(value) <= 3 {
		if l, ok := question.ParseLetter(value); ok {
			return l, true
		}
	}
	for i, opt := range options {
		if strings.EqualFold(value, opt) {
			return question.Letters()[i], true
		}
	}
	if m := answerLineRe.FindStringSubmatch(value); m != nil && len(m[1]) < len(value) {
		return resolveAnswer(m[1], options)
	}
	if m := trailingLetterRe.FindStringSubmatch(value); m != nil {
		return question.ParseLetter(m[1])
	}
	return "", false
}
