package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/physiq/internal/failure"
	"github.com/abhisek/physiq/internal/question"
)

// BatchGroupSize is how many requests of a batch run at once.
const BatchGroupSize = 3

// GenerateMultipleQuestions runs reqs in groups of BatchGroupSize, waiting
// for each group before starting the next. Failed items are dropped; the
// call fails only when every item fails. A quota failure cancels the rest
// of its group and skips the remaining groups, since no further call can
// be admitted. Results keep request order.
func (o *Orchestrator) GenerateMultipleQuestions(ctx context.Context, reqs []Request) ([]*question.GeneratedQuestion, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	results := make([]*question.GeneratedQuestion, len(reqs))
	errs := make([]error, len(reqs))

	for start := 0; start < len(reqs); start += BatchGroupSize {
		end := min(start+BatchGroupSize, len(reqs))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i], errs[i] = o.GenerateQuestion(gctx, reqs[i])
				if failure.IsKind(errs[i], failure.KindQuota) {
					return errs[i]
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			o.logger.Warn().
				Err(err).
				Int("skipped", len(reqs)-end).
				Msg("quota reached, stopping batch")
			break
		}

		if ctx.Err() != nil {
			break
		}
	}

	out := make([]*question.GeneratedQuestion, 0, len(reqs))
	var last error
	for i, q := range results {
		if q != nil {
			out = append(out, q)
			continue
		}
		if errs[i] != nil {
			last = errs[i]
		}
	}

	o.logger.Info().
		Int("requested", len(reqs)).
		Int("generated", len(out)).
		Msg("batch finished")

	if len(out) == 0 {
		if last == nil {
			last = ctx.Err()
		}
		return nil, fmt.Errorf("all %d batch requests failed: %w", len(reqs), failure.Classify(last, failure.StageDone))
	}
	return out, nil
}
