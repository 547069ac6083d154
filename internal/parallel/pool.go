// Package parallel runs independent jobs, such as checking several model
// files, on a bounded number of goroutines.
//
// Each job owns its own engine; engines are never shared between jobs.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every item with at most workers calls in flight and
// returns the results in input order. If workers is 0 or negative, it
// defaults to the number of CPU cores.
//
// The first error cancels the context passed to the remaining calls and is
// returned once every started call has finished. Items not yet started
// when ctx is cancelled are skipped.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
