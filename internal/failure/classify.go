package failure

import (
	"context"
	"errors"
	"net"

	"github.com/abhisek/physiq/internal/llm"
	"github.com/abhisek/physiq/internal/parser"
	"github.com/abhisek/physiq/internal/ratelimit"
)

// stageKind is the kind a provider error raised during stage belongs to.
func stageKind(stage Stage) Kind {
	switch stage {
	case StageRefinement:
		return KindRefinement
	case StageRawValidation, StageRefinedValidation, StageQualityCheck:
		return KindValidation
	case StageInitialization:
		return KindConfiguration
	}
	return KindGeneration
}

// Classify maps any error raised during stage to an *Error. Errors that are
// already classified keep their kind; a missing stage is filled in.
func Classify(err error, stage Stage) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		if fe.Stage != "" {
			return fe
		}
		cp := *fe
		cp.Stage = stage
		return &cp
	}

	var qe *ratelimit.QuotaError
	if errors.As(err, &qe) {
		return Wrap(KindQuota, SubKindNone, stage, err).
			With("provider", qe.Provider).
			With("limit", qe.Limit)
	}

	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return Wrap(KindValidation, SubKindParse, stage, err).With("parse_error", string(pe.Kind))
	}

	var ua *llm.ErrUnauthorized
	if errors.As(err, &ua) {
		return Wrap(KindConfiguration, SubKindNone, stage, err).With("provider", ua.Provider)
	}

	kind := stageKind(stage)

	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) {
		out := Wrap(kind, SubKindRateLimit, stage, err)
		if rl.RetryAfter > 0 {
			out = out.With("retry_after", rl.RetryAfter.String())
		}
		return out
	}

	var ir *llm.ErrInvalidResponse
	var mt *llm.ErrTruncated
	if errors.As(err, &ir) || errors.As(err, &mt) {
		return Wrap(kind, SubKindParse, stage, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(kind, SubKindTimeout, stage, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Wrap(kind, SubKindTimeout, stage, err)
	}

	if errors.Is(err, context.Canceled) {
		return Wrap(kind, SubKindTransport, stage, err).NonRetryable()
	}

	return Wrap(kind, SubKindTransport, stage, err)
}
