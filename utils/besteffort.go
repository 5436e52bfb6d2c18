package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BestEffortMap applies fn to every item with at most limit calls in flight
// and returns the results in input order. When fn fails for an item, the
// result for that item is fallback(item, err); the batch itself never fails.
func BestEffortMap[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error), fallback func(T, error) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			res, err := fn(gctx, item)
			if err != nil {
				out[i] = fallback(item, err)
				return nil
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return out
}
