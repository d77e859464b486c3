// Package parallel provides bounded parallel execution helpers.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// NumWorkers returns the default number of workers for parallel operations.
func NumWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Map calls fn for every index in [0, n) on at most workers goroutines and
// collects the results in index order. Once any call fails, indices not yet
// started are skipped and the first error is returned.
func Map[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if workers <= 0 {
		workers = NumWorkers()
	}
	results := make([]T, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, i)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
