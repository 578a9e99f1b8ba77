package parser

import (
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/physiq/internal/question"
)

var (
	refinedHeaderRe = regexp.MustCompile(`(?i)^(?:refined|improved|revised|final)?[ \t]*question[ \t]*\d*[ \t]*[:.\-][ \t]*(.*)$`)
	correctRe       = regexp.MustCompile(`(?i)^(?:correct[ _\t]*answer|answer)[ \t]*[:=\-][ \t]*(.*)$`)
	improvementsRe  = regexp.MustCompile(`(?i)^improvements?(?:[ _\t]*made)?[ \t]*:[ \t]*(.*)$`)
	explanationRe   = regexp.MustCompile(`(?i)^explanation[ \t]*:[ \t]*(.*)$`)
	statusRe        = regexp.MustCompile(`(?i)^(?:validation[ _\t]*)?status[ \t]*:[ \t]*([a-z]+)`)
	bulletRe        = regexp.MustCompile(`^(?:[-*•]|\d+[.)])[ \t]+(.*)$`)
)

type section int

const (
	sectionNone section = iota
	sectionQuestion
	sectionImprovements
	sectionExplanation
)

// refinement collects what could be read from a refinement reply.
type refinement struct {
	text         string
	options      map[question.Letter]string
	answer       string
	improvements []string
	explanation  string
	status       string
}

// ParseRefinement reads the refinement model's reply. Any section that is
// missing or malformed keeps the raw question's value. The status is
// rejected when nothing could be read, corrected when something differs from
// raw, and valid otherwise, unless the reply states a status explicitly.
func ParseRefinement(text string, raw question.RawQuestion) question.RefinedQuestion {
	text = clean(text)

	r, ok := parseRefinementJSON(text)
	if !ok {
		r = scanRefinement(splitLines(text))
	}

	out := question.RefinedQuestion{
		Text:          raw.Text,
		Options:       slices.Clone(raw.Options),
		CorrectAnswer: raw.SuggestedAnswer,
		Topic:         raw.Topic,
		Improvements:  r.improvements,
		Explanation:   r.explanation,
	}

	read := false
	if utf8.RuneCountInString(r.text) >= minQuestionLength {
		out.Text = r.text
		read = true
	}
	if opts, ok := completeOptions(r.options); ok {
		out.Options = opts
		read = true
	}
	if l, ok := resolveAnswer(r.answer, out.Options); ok && r.answer != "" {
		out.CorrectAnswer = l
		read = true
	}

	switch {
	case !read:
		out.ValidationStatus = question.StatusRejected
	case validStatus(r.status):
		out.ValidationStatus = question.ValidationStatus(strings.ToLower(r.status))
	case changed(out, raw):
		out.ValidationStatus = question.StatusCorrected
	default:
		out.ValidationStatus = question.StatusValid
	}
	return out
}

func scanRefinement(lines []string) refinement {
	r := refinement{options: make(map[question.Letter]string, question.OptionCount)}
	var stem []string
	var expl []string
	cur := sectionNone

	for _, line := range lines {
		if line == "" {
			continue
		}
		if l, body, ok := matchOption(line, optionRe); ok {
			if _, dup := r.options[l]; !dup {
				r.options[l] = body
			}
			cur = sectionNone
			continue
		}
		if m := correctRe.FindStringSubmatch(line); m != nil {
			r.answer = strings.TrimSpace(m[1])
			cur = sectionNone
			continue
		}
		if m := improvementsRe.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[1]); item != "" && !strings.EqualFold(item, "none") {
				r.improvements = append(r.improvements, item)
			}
			cur = sectionImprovements
			continue
		}
		if m := explanationRe.FindStringSubmatch(line); m != nil {
			expl = append(expl, m[1])
			cur = sectionExplanation
			continue
		}
		if m := statusRe.FindStringSubmatch(line); m != nil {
			r.status = m[1]
			cur = sectionNone
			continue
		}
		if m := refinedHeaderRe.FindStringSubmatch(line); m != nil && len(r.options) == 0 {
			stem = append(stem[:0], m[1])
			cur = sectionQuestion
			continue
		}

		switch cur {
		case sectionQuestion:
			stem = append(stem, line)
		case sectionImprovements:
			if m := bulletRe.FindStringSubmatch(line); m != nil {
				line = m[1]
			}
			r.improvements = append(r.improvements, strings.TrimSpace(line))
		case sectionExplanation:
			expl = append(expl, line)
		}
	}

	r.text = collapse(stem)
	r.explanation = collapse(expl)
	return r
}

type refinementJSON struct {
	Question         string          `json:"question"`
	Options          []string        `json:"options"`
	CorrectAnswer    string          `json:"correct_answer"`
	Improvements     json.RawMessage `json:"improvements"`
	Explanation      string          `json:"explanation"`
	ValidationStatus string          `json:"validation_status"`
}

// parseRefinementJSON accepts the object layout that structured-output
// providers return, optionally surrounded by prose.
func parseRefinementJSON(text string) (refinement, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return refinement{}, false
	}

	var doc refinementJSON
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil || doc.Question == "" {
		return refinement{}, false
	}

	r := refinement{
		text:        collapse([]string{doc.Question}),
		answer:      strings.TrimSpace(doc.CorrectAnswer),
		explanation: strings.TrimSpace(doc.Explanation),
		status:      doc.ValidationStatus,
		options:     make(map[question.Letter]string, question.OptionCount),
	}
	if len(doc.Options) == question.OptionCount {
		for i, o := range doc.Options {
			o = strings.TrimSpace(o)
			if _, body, ok := matchOption(o, optionRe); ok {
				o = body
			}
			r.options[question.Letters()[i]] = o
		}
	}

	// improvements may be a list or a single string.
	var list []string
	var single string
	switch {
	case json.Unmarshal(doc.Improvements, &list) == nil:
		r.improvements = list
	case json.Unmarshal(doc.Improvements, &single) == nil && single != "":
		r.improvements = []string{single}
	}
	return r, true
}

func completeOptions(m map[question.Letter]string) ([]string, bool) {
	if len(m) != question.OptionCount {
		return nil, false
	}
	opts := ordered(m)
	for _, o := range opts {
		if o == "" {
			return nil, false
		}
	}
	return opts, true
}

func validStatus(s string) bool {
	switch question.ValidationStatus(strings.ToLower(s)) {
	case question.StatusValid, question.StatusCorrected, question.StatusRejected:
		return true
	}
	return false
}

func changed(q question.RefinedQuestion, raw question.RawQuestion) bool {
	return q.Text != raw.Text ||
		!slices.Equal(q.Options, raw.Options) ||
		q.CorrectAnswer != raw.SuggestedAnswer
}
