package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrPingUnsupported is returned by Ping on a wrapper whose provider
// cannot be pinged.
var ErrPingUnsupported = errors.New("provider does not support health checks")

// ErrRateLimit is a 429 from a provider. RetryAfter is zero when the
// provider did not say how long to wait.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	name := providerLabel(e.Provider)
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited (retry after %s): %v", name, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s rate limited: %v", name, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrUnauthorized is a rejected credential (401 or 403). Retrying with the
// same key cannot succeed.
type ErrUnauthorized struct {
	Provider string
	Err      error
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("%s rejected credentials: %v", providerLabel(e.Provider), e.Err)
}

func (e *ErrUnauthorized) Unwrap() error { return e.Err }

// ErrProviderUnavailable is a provider that is down, unreachable or
// answered with an unexpected status.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", providerLabel(e.Provider), e.Err)
	}
	return providerLabel(e.Provider) + " unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse is a reply that is empty or does not match the
// requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrTruncated is a structured reply cut off by the token limit. The
// partial JSON is kept for logging.
type ErrTruncated struct {
	Content json.RawMessage
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("LLM response truncated at the token limit after %d bytes", len(e.Content))
}

// StatusError is a non-2xx reply from an HTTP endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Code }

// fromStatus maps an HTTP status reported by provider to a typed error
// wrapping cause.
func fromStatus(provider string, code int, retryAfter time.Duration, cause error) error {
	switch {
	case code == http.StatusTooManyRequests:
		return &ErrRateLimit{Provider: provider, RetryAfter: retryAfter, Err: cause}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &ErrUnauthorized{Provider: provider, Err: cause}
	}
	return &ErrProviderUnavailable{Provider: provider, Err: cause}
}

// parseRetryAfter reads the delta-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	return parseRetryAfter(resp.Header.Get("Retry-After"))
}

func providerLabel(name string) string {
	if name == "" {
		return "LLM provider"
	}
	return name
}
