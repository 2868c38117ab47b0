package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element of items using at most workers
// goroutines and returns the first error. With workers <= 1 the elements are
// processed inline, in order, on the caller's goroutine.
//
// action must only touch state owned by its element; ForEach gives no
// ordering guarantee between elements when workers > 1.
func ForEach[T any](ctx context.Context, items []T, workers int, action func(context.Context, T) error) error {
	if workers <= 1 || len(items) <= 1 {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := action(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}

	errGroup, gctx := errgroup.WithContext(ctx)
	errGroup.SetLimit(workers)
	for _, item := range items {
		errGroup.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return action(gctx, item)
		})
	}
	return errGroup.Wait()
}

// ParallelMap applies mapFn to each element with at most workers goroutines,
// preserving order in the result.
func ParallelMap[T any, R any](ctx context.Context, items []T, workers int, mapFn func(T) R) ([]R, error) {
	out := make([]R, len(items))
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	err := ForEach(ctx, idx, workers, func(_ context.Context, i int) error {
		out[i] = mapFn(items[i])
		return nil
	})
	return out, err
}
