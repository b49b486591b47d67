// Package parallel provides bounded-concurrency fan-out for housekeeping
// work that sits outside the single-threaded row pipeline (external sort's
// spill-file cleanup). It is not used anywhere on the row-processing path
// itself: the engine's evaluation order is pull-based and single-threaded,
// as required by the graphs this package helps clean up after.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForEach runs fn once per item in items, with at most limit calls in
// flight at a time. If limit <= 0, GOMAXPROCS is used. The first error
// returned by any call cancels ctx for the others and is returned once
// every call has stopped; ForEach does not keep partial results ordered
// since the work it is meant for (e.g. removing spill files) has no
// observable order.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for _, item := range items {
		item := item
		group.Go(func() error {
			return fn(groupCtx, item)
		})
	}

	return group.Wait()
}
