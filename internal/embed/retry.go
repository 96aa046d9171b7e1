package embed

import (
	"context"
	"time"
)

// Retrier wraps a Provider with bounded exponential backoff on transient
// failures. Fatal failures (auth/config) and context cancellation pass
// through immediately.
type Retrier struct {
	inner       Provider
	maxAttempts int
	baseDelay   time.Duration
}

// Defaults used when NewRetrier is given zero values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// NewRetrier wraps inner with at most maxAttempts tries and the given base
// delay, doubled after each transient failure. Zero values pick the
// package defaults.
func NewRetrier(inner Provider, maxAttempts int, baseDelay time.Duration) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Retrier{inner: inner, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// Embed delegates to the wrapped provider, retrying transient errors.
func (r *Retrier) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	delay := r.baseDelay

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		vectors, err := r.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

var _ Provider = (*Retrier)(nil)
