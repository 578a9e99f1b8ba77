package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/physiq/internal/question"
	"github.com/abhisek/physiq/internal/topics"
)

const (
	relevanceWarnThreshold    = 0.5
	relevanceSuggestThreshold = 0.3
)

// IB command terms, split by the cognitive level they signal.
var (
	analyticalTerms    = []string{"derive", "evaluate", "explain", "deduce", "justify", "analyse", "analyze", "discuss", "compare", "predict", "suggest", "show that"}
	computationalTerms = []string{"calculate", "state", "identify", "determine", "estimate", "define", "list", "outline", "describe", "what is", "which"}

	wordRe = regexp.MustCompile(`[\p{L}]+`)
)

// vocabulary is every stemmed keyword in the taxonomy. Question terms
// outside it carry no topical signal.
var vocabulary = func() map[string]bool {
	v := make(map[string]bool)
	for _, t := range topics.All() {
		for _, k := range t.Keywords {
			for _, w := range wordRe.FindAllString(strings.ToLower(k), -1) {
				v[stem(w)] = true
			}
		}
	}
	return v
}()

// ComplianceValidator scores curriculum fit. It only ever warns.
type ComplianceValidator struct{}

func (v *ComplianceValidator) Name() string { return "compliance" }

func (v *ComplianceValidator) Validate(c Candidate, t topics.Topic, d question.Difficulty) ComplianceVerdict {
	out := ComplianceVerdict{Verdict: Verdict{Valid: true}}

	out.TopicRelevance = topicRelevance(c, t)
	if len(t.Keywords) > 0 && out.TopicRelevance < relevanceWarnThreshold {
		out.warn("low_topic_relevance", SeverityLow, "Use the topic's core vocabulary in the stem.",
			"topic relevance %.2f is below %.1f", out.TopicRelevance, relevanceWarnThreshold)
		if out.TopicRelevance < relevanceSuggestThreshold {
			out.suggest(fmt.Sprintf("Refer to %s concepts such as %s.", t.Name, strings.Join(firstN(t.Keywords, 3), ", ")))
		}
	}

	out.InferredDifficulty, out.CommandWords = inferDifficulty(c.Text)

	switch {
	case t.HigherLevelOnly && out.InferredDifficulty != question.DifficultyHigher:
		out.warn("hl_topic_not_analytical", SeverityMedium, "Use analytical command terms such as derive or evaluate.",
			"%s is a higher-level topic but the question is not analytical", t.Name)
	case d == question.DifficultyHigher && out.InferredDifficulty != question.DifficultyHigher:
		out.warn("difficulty_mismatch", SeverityLow, "Use analytical command terms such as derive or evaluate.",
			"higher-level question uses only computational command terms")
	case d == question.DifficultyStandard && out.InferredDifficulty == question.DifficultyHigher:
		out.warn("difficulty_mismatch", SeverityLow, "Use computational command terms such as calculate or state.",
			"standard-level question uses analytical command terms")
	}
	return out
}

// topicRelevance is the Jaccard similarity between the topic's keyword set
// and the taxonomy terms used in the question.
func topicRelevance(c Candidate, t topics.Topic) float64 {
	keys := make(map[string]bool, len(t.Keywords))
	for _, k := range t.Keywords {
		for _, w := range wordRe.FindAllString(strings.ToLower(k), -1) {
			keys[stem(w)] = true
		}
	}

	terms := make(map[string]bool)
	for _, s := range append([]string{c.Text}, c.Options...) {
		for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
			if len(w) <= 3 {
				continue
			}
			if st := stem(w); vocabulary[st] {
				terms[st] = true
			}
		}
	}
	return jaccard(keys, terms)
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// stem folds inflections ("accelerates", "acceleration") onto one key.
func stem(w string) string {
	if len(w) > 4 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		w = w[:len(w)-1]
	}
	r := []rune(w)
	if len(r) > 6 {
		r = r[:6]
	}
	return string(r)
}

func inferDifficulty(text string) (question.Difficulty, []string) {
	lower := strings.ToLower(text)
	var found []string
	analytical := false
	for _, term := range analyticalTerms {
		if containsWord(lower, term) {
			found = append(found, term)
			analytical = true
		}
	}
	for _, term := range computationalTerms {
		if containsWord(lower, term) {
			found = append(found, term)
		}
	}
	if analytical {
		return question.DifficultyHigher, found
	}
	return question.DifficultyStandard, found
}

func containsWord(s, term string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], term)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(term)
		if (start == 0 || !isLetter(s[start-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		i = end
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
