package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// RetryPolicy is a bounded retry with linear backoff, applied to external
// fetches that may fail transiently. Not-found results are never retried:
// a missing row will still be missing on the next attempt.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Delay:       200 * time.Millisecond,
}

// Do runs op up to MaxAttempts times, waiting Delay*attempt between
// attempts. It returns the last error, or the context error if the caller
// went away while waiting.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, gorm.ErrRecordNotFound) || errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay * time.Duration(attempt)):
		}
	}
	return lastErr
}
