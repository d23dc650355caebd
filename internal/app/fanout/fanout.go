// Package fanout provides a generic, bounded-concurrency fan-out helper for
// application-layer orchestration: it runs a function across a slice of items
// on a fixed number of worker goroutines and returns results in input order.
//
// The helper manages only goroutines, a semaphore channel for bounding
// concurrency, and context cancellation. It depends on nothing beyond the
// standard library, so any service can reuse it for any item type.
package fanout

import (
	"context"
	"sync"
)

// Result holds the outcome of processing a single item.
// Either Value is populated (on success) or Err is non-nil (on failure).
type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for each item using at most workers concurrent goroutines
// and returns per-item results in the same order as the input.
//
// A goroutine that is still waiting for a semaphore slot when ctx is canceled
// records ctx.Err() without calling fn. Goroutines that already hold a slot
// run to completion; fn should check ctx itself if it supports cancellation.
//
// Run blocks until every goroutine finishes. An empty input yields an empty
// non-nil slice. workers must be >= 1; when workers >= len(items) there is no
// semaphore contention and everything runs at once.
func Run[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return []Result[R]{}
	}

	results := make([]Result[R], len(items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it T) {
			defer wg.Done()

			// Context-aware semaphore acquisition.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result[R]{Err: ctx.Err()}
				return
			}

			val, err := fn(ctx, it)
			results[idx] = Result[R]{Value: val, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}
