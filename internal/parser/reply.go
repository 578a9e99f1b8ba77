package parser

import (
	"encoding/json"
	"strings"
)

// Reply is the normalized shape of a generation provider's response body.
// It is either an EnvelopeReply or a PlainReply; Classify is the only place
// that inspects the raw body to decide which.
type Reply interface {
	reply()
}

// EnvelopeReply is a JSON object whose text field holds the generated text,
// possibly preceded by an echo of the JSON prompt.
type EnvelopeReply struct {
	Field string
	Body  string
}

// PlainReply is unstructured text.
type PlainReply struct {
	Text string
}

func (EnvelopeReply) reply() {}
func (PlainReply) reply()    {}

// envelopeFields are checked in order; the first string-valued one wins.
var envelopeFields = []string{"response", "generated_text", "output", "text", "completion"}

// Classify decides whether raw is a JSON envelope or plain text.
func Classify(raw string) Reply {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return PlainReply{Text: trimmed}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return PlainReply{Text: trimmed}
	}

	for _, f := range envelopeFields {
		if s, ok := stringField(obj, f); ok && strings.TrimSpace(s) != "" {
			return EnvelopeReply{Field: f, Body: s}
		}
	}

	// Some servers use an arbitrary key; the generated text is then the
	// trailing string field.
	if f, s, ok := lastStringField(trimmed); ok {
		return EnvelopeReply{Field: f, Body: s}
	}

	return PlainReply{Text: trimmed}
}

// Normalize reduces a Reply to the single string the parser works on.
func Normalize(r Reply) string {
	switch v := r.(type) {
	case EnvelopeReply:
		return stripPromptEcho(v.Body)
	case PlainReply:
		return v.Text
	default:
		return ""
	}
}

// stripPromptEcho removes a leading echoed JSON prompt from body. If the
// body is itself a JSON object with a non-empty "output" that is returned.
func stripPromptEcho(body string) string {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "{") {
		return body
	}

	end := matchingBrace(body)
	if end < 0 {
		return body
	}

	rest := strings.TrimSpace(body[end+1:])
	if rest != "" {
		return rest
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &inner); err == nil {
		if out, ok := stringField(inner, "output"); ok && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		}
	}
	return body
}

// matchingBrace returns the index of the brace closing the object that
// opens at s[0], skipping braces inside JSON strings. Returns -1 if
// unbalanced.
func matchingBrace(s string) int {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// lastStringField walks the object's top-level keys in document order and
// returns the last one holding a non-empty string.
func lastStringField(doc string) (string, string, bool) {
	dec := json.NewDecoder(strings.NewReader(doc))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", "", false
	}

	var field, value string
	found := false
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", "", false
		}
		key, _ := keyTok.(string)

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return "", "", false
		}
		var s string
		if json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
			field, value, found = key, s, true
		}
	}
	return field, value, found
}
