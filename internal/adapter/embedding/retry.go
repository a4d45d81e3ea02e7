package embedding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"personarag/internal/port"
)

// RetryingEmbedder wraps an Embedder with bounded exponential backoff.
// A per-call timeout inside the wrapped embedder is retryable; the
// caller's own context expiring is not.
type RetryingEmbedder struct {
	inner      port.Embedder
	maxRetries int
	baseDelay  time.Duration
}

func NewRetryingEmbedder(inner port.Embedder, maxRetries int, baseDelay time.Duration) *RetryingEmbedder {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &RetryingEmbedder{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

func (e *RetryingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(e.baseDelay, attempt)
			slog.Warn("embedding call failed, retrying",
				"attempt", attempt,
				"delay", delay,
				"error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		vectors, err := e.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		// The enclosing operation was abandoned; stop immediately.
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (e *RetryingEmbedder) Dimension() int { return e.inner.Dimension() }

func (e *RetryingEmbedder) ModelName() string { return e.inner.ModelName() }

// Attempts returns the total number of attempts a single Embed call may
// make.
func (e *RetryingEmbedder) Attempts() int { return e.maxRetries + 1 }

// backoff doubles the delay with each attempt, capped at 30s.
func backoff(base time.Duration, attempt int) time.Duration {
	delay := base << uint(attempt-1)
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
