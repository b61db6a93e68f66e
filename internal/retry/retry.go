// Package retry runs an operation until it succeeds, a fixed number of
// attempts is used up or the context is done.
package retry

import (
	"context"
	"time"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// Policy is a fixed-delay retry policy.
type Policy struct {
	// Attempts is the total number of tries, including the first one.
	// Values below 1 mean a single try.
	Attempts int
	// Delay is the pause between tries.
	Delay time.Duration
	// Retryable decides whether err is worth another try. Nil retries every
	// error.
	Retryable func(err error) bool
}

// Do executes fn with retry logic and returns the last error when every
// attempt failed. attempt starts at 1.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	logger := ctxlog.FromContext(ctx)
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts || (p.Retryable != nil && !p.Retryable(err)) {
			break
		}
		logger.Warn("Attempt failed, retrying.", "attempt", attempt, "max_attempts", attempts, "error", err)

		if p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return lastErr
			}
		}
	}
	return lastErr
}
