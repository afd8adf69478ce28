// Package hydrate implements the adaptive bounded-concurrency detail
// fetch loop several adapters use to resolve per-job detail pages after a
// listing fetch (§4.5).
package hydrate

import (
	"context"
	"time"
)

// Fetcher resolves one item's detail. A returned error is treated exactly
// like a nil result: counted as a failure, never aborting the batch.
type Fetcher[T any, R any] func(ctx context.Context, item T) (R, error)

// Options tunes the adaptive loop. Zero values fall back to the §4.5/§5
// defaults (batch size 4, delay 400ms, min batch 1, max batch = initial).
type Options struct {
	InitialBatchSize int
	MinBatchSize     int
	MaxBatchSize     int
	InitialDelay     time.Duration
	MinDelay         time.Duration
	MaxDelay         time.Duration
	DelayStep        time.Duration
}

func (o Options) withDefaults() Options {
	if o.InitialBatchSize <= 0 {
		o.InitialBatchSize = 4
	}
	if o.MinBatchSize <= 0 {
		o.MinBatchSize = 1
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = o.InitialBatchSize
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 400 * time.Millisecond
	}
	if o.MinDelay <= 0 {
		o.MinDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 2 * time.Second
	}
	if o.DelayStep <= 0 {
		o.DelayStep = 250 * time.Millisecond
	}
	return o
}

// Result pairs each input item with its resolved detail, or marks it failed.
type Result[T any, R any] struct {
	Item   T
	Value  R
	Failed bool
}

// Hydrate implements the hydrate(items, fetcher) contract from §4.5: it
// consumes items in parallel batches, shrinking the batch and
// lengthening the inter-batch delay whenever a batch has any failure, and
// growing/shortening them again after a clean batch.
func Hydrate[T any, R any](ctx context.Context, items []T, fetch Fetcher[T, R], opts Options) (results []Result[T, R], failures int) {
	o := opts.withDefaults()
	batchSize := o.InitialBatchSize
	delay := o.InitialDelay

	results = make([]Result[T, R], 0, len(items))

	for start := 0; start < len(items); {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		start = end

		batchResults := runBatch(ctx, batch, fetch)
		anyFailed := false
		for _, r := range batchResults {
			if r.Failed {
				anyFailed = true
				failures++
			}
			results = append(results, r)
		}

		if anyFailed {
			batchSize = maxInt(o.MinBatchSize, batchSize-1)
			delay = minDuration(o.MaxDelay, delay+o.DelayStep)
		} else {
			batchSize = minInt(o.MaxBatchSize, batchSize+1)
			delay = maxDuration(o.MinDelay, delay-100*time.Millisecond)
		}

		if start < len(items) {
			select {
			case <-ctx.Done():
				return results, failures
			case <-time.After(delay):
			}
		}
	}
	return results, failures
}

func runBatch[T any, R any](ctx context.Context, batch []T, fetch Fetcher[T, R]) []Result[T, R] {
	out := make([]Result[T, R], len(batch))
	done := make(chan struct{}, len(batch))

	for i, item := range batch {
		go func(i int, item T) {
			defer func() { done <- struct{}{} }()
			v, err := fetch(ctx, item)
			if err != nil {
				out[i] = Result[T, R]{Item: item, Failed: true}
				return
			}
			out[i] = Result[T, R]{Item: item, Value: v}
		}(i, item)
	}
	for range batch {
		<-done
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
