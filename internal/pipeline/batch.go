// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/ray-engine/internal/packet"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// BatchResult holds the outcome of a batch run. Results and Errors are
// aligned with the input runs; exactly one of the two is set per run.
type BatchResult struct {
	Scored   int
	Rejected int
	Failed   int
	Results  []*Result
	Errors   []error
}

// Total returns the number of runs processed.
func (r BatchResult) Total() int {
	return r.Scored + r.Rejected + r.Failed
}

// HasFailures reports whether any run was rejected or failed.
func (r BatchResult) HasFailures() bool {
	return r.Rejected > 0 || r.Failed > 0
}

// RunBatch scores runs with at most workers running at once. A failing run
// does not stop the others; only cancelling ctx does.
func (p *Pipeline) RunBatch(ctx context.Context, runs []types.RunInput, workers int) (BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	res := BatchResult{
		Results: make([]*Result, len(runs)),
		Errors:  make([]error, len(runs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range runs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := p.Run(gctx, runs[i])
			res.Results[i], res.Errors[i] = r, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	for _, err := range res.Errors {
		switch {
		case err == nil:
			res.Scored++
		case errors.Is(err, packet.ErrMissingInput), errors.Is(err, packet.ErrInvalidInput):
			res.Rejected++
		default:
			res.Failed++
		}
	}
	p.log.Info("batch scored",
		zap.Int("scored", res.Scored),
		zap.Int("rejected", res.Rejected),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
