package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BatchOptions controls how a batch is executed.
type BatchOptions struct {
	// Concurrency bounds the number of items in flight. Zero or one
	// means sequential execution.
	Concurrency int

	// Sequential forces one-at-a-time execution regardless of
	// Concurrency.
	Sequential bool

	// Delay, in sequential mode, is the pause after each item fully
	// completes and before the next one starts.
	Delay time.Duration
}

// RunBatch attempts every item exactly once through process, isolating
// per-item failure from the rest of the batch. The returned partition
// preserves input order even when items complete out of order. A panic
// or a non-nil error from process is normalized into the failure list;
// nothing ever escapes the batch. Empty input returns an empty result
// without invoking process.
func RunBatch[T, R any](
	ctx context.Context,
	log zerolog.Logger,
	items []T,
	operationName string,
	keyOf func(T) string,
	process func(context.Context, T) (R, error),
	opts BatchOptions,
) BatchResult[T, R] {
	result := BatchResult[T, R]{
		Successes: make([]ItemSuccess[T, R], 0, len(items)),
		Failures:  make([]ItemFailure[T], 0),
	}
	if len(items) == 0 {
		return result
	}

	type outcome struct {
		result R
		err    error
	}
	outcomes := make([]outcome, len(items))

	if opts.Sequential || opts.Concurrency <= 1 {
		for i, item := range items {
			r, err := safeProcess(ctx, item, process)
			outcomes[i] = outcome{result: r, err: err}

			if opts.Delay > 0 && i < len(items)-1 {
				select {
				case <-time.After(opts.Delay):
				case <-ctx.Done():
				}
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for i, item := range items {
			g.Go(func() error {
				r, err := safeProcess(gctx, item, process)
				outcomes[i] = outcome{result: r, err: err}
				// Failures are recorded, never propagated: one bad
				// item must not cancel the rest of the batch.
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, item := range items {
		if err := outcomes[i].err; err != nil {
			result.Failures = append(result.Failures, ItemFailure[T]{Item: item, Err: err})
			continue
		}
		result.Successes = append(result.Successes, ItemSuccess[T, R]{Item: item, Result: outcomes[i].result})
	}

	if len(result.Failures) > 0 {
		keys := make([]string, len(result.Failures))
		for i, f := range result.Failures {
			keys[i] = keyOf(f.Item)
		}
		log.Warn().
			Str("operation", operationName).
			Int("failed", len(result.Failures)).
			Int("total", len(items)).
			Strs("failed_items", keys).
			Msg("Batch completed with failures")
	}

	return result
}

// safeProcess invokes process, converting panics into ordinary errors so
// a misbehaving processor degrades into a per-item failure.
func safeProcess[T, R any](ctx context.Context, item T, process func(context.Context, T) (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return process(ctx, item)
}
