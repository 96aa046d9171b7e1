// Package embed wraps text-embedding providers behind one interface with a
// transient/fatal error taxonomy, bounded retry, and concurrent batched
// dispatch.
package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Provider is the embedding collaborator: one fixed-dimension vector per
// input text, in input order.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Sentinel errors classifying provider failures. Transient failures
// (rate limits, timeouts) are retried with backoff; fatal ones
// (auth/config) are not.
var (
	ErrRateLimited = errors.New("embed: rate limited")
	ErrAuth        = errors.New("embed: authentication failed")
)

// IsTransient reports whether a provider error is worth retrying.
func IsTransient(err error) bool {
	if errors.Is(err, ErrAuth) {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}

// BatchOptions bounds batched embedding dispatch.
type BatchOptions struct {
	// BatchSize is the maximum number of texts per provider call.
	BatchSize int
	// Concurrency is the maximum number of in-flight provider calls.
	Concurrency int
	// Timeout applies to each individual provider call.
	Timeout time.Duration
}

// DefaultBatchOptions returns the stock dispatch bounds.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		BatchSize:   64,
		Concurrency: 4,
		Timeout:     60 * time.Second,
	}
}

// BatchEmbed embeds texts through provider in bounded, concurrent batches
// and merges the vectors back into input order. The first failing batch
// cancels the remaining in-flight calls.
func BatchEmbed(ctx context.Context, provider Provider, texts []string, opts BatchOptions) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchOptions().BatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultBatchOptions().Concurrency
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for start := 0; start < len(texts); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(texts))

		g.Go(func() error {
			callCtx := gctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, opts.Timeout)
				defer cancel()
			}

			batch, err := provider.Embed(callCtx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts", start, end, len(batch), end-start)
			}
			// Each goroutine writes a disjoint slice range; no lock needed.
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
