package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptsExhausted is returned by Until when the attempt cap is reached
// before the condition holds.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// RetryConfig holds the parameters for the polling strategy.
//
// MaxAttempts <= 0 removes the cap; only ctx can stop the loop then.
// BaseDelay of zero polls back to back. A non-zero BaseDelay doubles after
// every miss up to MaxDelay.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Logger      *Logger
}

// Until calls fn until it reports done. An error from fn is returned
// immediately and is never retried.
func (r *RetryConfig) Until(ctx context.Context, operationName string, fn func(attempt int) (bool, error)) error {
	delay := r.BaseDelay

	for attempt := 1; r.MaxAttempts <= 0 || attempt <= r.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", operationName, err)
		}

		done, err := fn(attempt)
		if err != nil {
			return err
		}
		if done {
			if attempt > 1 && r.Logger != nil {
				r.Logger.Debug("[retry] %s succeeded on attempt %d", operationName, attempt)
			}
			return nil
		}

		if r.Logger != nil {
			r.Logger.Debug("[retry] %s not ready (attempt %d), polling again in %v", operationName, attempt, delay)
		}
		if delay > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return fmt.Errorf("%s: %w", operationName, err)
			}
			delay *= 2
			if r.MaxDelay > 0 && delay > r.MaxDelay {
				delay = r.MaxDelay
			}
		}
	}

	return fmt.Errorf("%s: %w after %d attempts", operationName, ErrAttemptsExhausted, r.MaxAttempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
