// Package failure classifies pipeline errors, decides whether a failed
// stage may be retried and supplies static fallback questions when every
// remote attempt is exhausted.
package failure

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// Kind is the top-level failure category reported to callers.
type Kind string

const (
	KindGeneration    Kind = "generation-failure"
	KindRefinement    Kind = "refinement-failure"
	KindValidation    Kind = "validation-failure"
	KindQuota         Kind = "quota-exceeded"
	KindConfiguration Kind = "configuration-error"
)

// Kinds returns every failure kind in reporting order.
func Kinds() []Kind {
	return []Kind{KindGeneration, KindRefinement, KindValidation, KindQuota, KindConfiguration}
}

// SubKind narrows a provider failure.
type SubKind string

const (
	SubKindNone      SubKind = ""
	SubKindTimeout   SubKind = "timeout"
	SubKindTransport SubKind = "transport"
	SubKindRateLimit SubKind = "rate_limit"
	SubKindParse     SubKind = "parse"
)

// Stage names the pipeline step an error is attributed to.
type Stage string

const (
	StageInitialization    Stage = "initialization"
	StageGeneration        Stage = "llama_generation"
	StageRawValidation     Stage = "raw_validation"
	StageRefinement        Stage = "openrouter_refinement"
	StageRefinedValidation Stage = "refined_validation"
	StageQualityCheck      Stage = "quality_check"
	StageDone              Stage = "done"
)

// Error is the structured failure every pipeline caller sees. Code is stable
// across releases and safe to match on.
type Error struct {
	Kind      Kind
	Code      string
	SubKind   SubKind
	Stage     Stage
	Message   string
	Retryable bool

	// Context carries diagnostic fields. Keys that look like credentials
	// are never stored.
	Context map[string]string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.SubKind != SubKindNone {
		b.WriteString("/")
		b.WriteString(string(e.SubKind))
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " at %s", e.Stage)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

// New returns an Error of kind with a default retry hint: quota and
// configuration errors are never retryable.
func New(kind Kind, stage Stage, format string, args ...any) *Error {
	return &Error{
		Kind:      kind,
		Code:      code(kind, SubKindNone),
		Stage:     stage,
		Message:   fmt.Sprintf(format, args...),
		Retryable: retryableKind(kind),
	}
}

// Wrap is New with an underlying cause. The message is taken from err.
func Wrap(kind Kind, sub SubKind, stage Stage, err error) *Error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Kind:      kind,
		Code:      code(kind, sub),
		SubKind:   sub,
		Stage:     stage,
		Message:   msg,
		Retryable: retryableKind(kind),
		Err:       err,
	}
}

// With returns a copy of e with key set in its context. Credential-like
// keys are dropped.
func (e *Error) With(key, value string) *Error {
	cp := *e
	cp.Context = maps.Clone(e.Context)
	if cp.Context == nil {
		cp.Context = make(map[string]string)
	}
	if !sensitiveKey(key) {
		cp.Context[key] = value
	}
	return &cp
}

// NonRetryable returns a copy of e that callers must not retry.
func (e *Error) NonRetryable() *Error {
	cp := *e
	cp.Retryable = false
	return &cp
}

func retryableKind(k Kind) bool {
	return k != KindQuota && k != KindConfiguration
}

var codePrefix = map[Kind]string{
	KindGeneration:    "GENERATION",
	KindRefinement:    "REFINEMENT",
	KindValidation:    "VALIDATION",
	KindQuota:         "QUOTA",
	KindConfiguration: "CONFIGURATION",
}

// code derives the stable code, e.g. GENERATION_TIMEOUT or QUOTA_EXCEEDED.
func code(k Kind, sub SubKind) string {
	prefix, ok := codePrefix[k]
	if !ok {
		prefix = "UNKNOWN"
	}
	switch {
	case k == KindQuota:
		return prefix + "_EXCEEDED"
	case k == KindConfiguration:
		return prefix + "_INVALID"
	case sub != SubKindNone:
		return prefix + "_" + strings.ToUpper(string(sub))
	}
	return prefix + "_FAILED"
}

var sensitiveFragments = []string{"key", "token", "secret", "password", "authorization", "credential"}

func sensitiveKey(k string) bool {
	k = strings.ToLower(k)
	for _, f := range sensitiveFragments {
		if strings.Contains(k, f) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of ctx without credential-like keys.
func Sanitize(ctx map[string]string) map[string]string {
	out := make(map[string]string, len(ctx))
	for k, v := range ctx {
		if !sensitiveKey(k) {
			out[k] = v
		}
	}
	return out
}
