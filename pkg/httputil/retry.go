package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/heatposter/pkg/errors"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Retry executes fn up to attempts times with exponential backoff.
// Errors wrapped with [RetryableError] and [errors.RateLimitedError] are
// retried; others return immediately. A RetryAfter hint replaces the
// current delay for that attempt. Returns the last error if all attempts
// fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		wait, ok := retryDelay(err, delay)
		if !ok {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff is [Retry] with 3 attempts and a 1 second initial delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

func retryDelay(err error, delay time.Duration) (time.Duration, bool) {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			return time.Duration(rl.RetryAfter) * time.Second, true
		}
		return delay, true
	}
	return delay, stderrors.As(err, new(*RetryableError))
}
