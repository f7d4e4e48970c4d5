// Package retry provides the two retry shapes used by the fulfillment backend:
// Do, a bounded per-call combinator that reports exhaustion as a value, and
// Write, a jittered backoff for Job Store write transactions.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited marks an attempt rejected by a remote rate limiter.
// Do waits Policy.RateLimitDelay instead of Policy.Delay after such attempts.
var ErrRateLimited = errors.New("rate limited")

// Policy bounds a Do call.
type Policy struct {
	MaxAttempts    int
	Delay          time.Duration
	RateLimitDelay time.Duration
}

// Result is the outcome of a Do call whose failures were all retryable.
type Result[T any] struct {
	Value    T
	Attempts int
	// LastErr is the error of the final attempt when every attempt failed.
	LastErr error
}

// Exhausted reports whether every attempt failed.
func (r Result[T]) Exhausted() bool {
	return r.LastErr != nil
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as an expected, recoverable failure for Do.
// Errors that are not marked stop Do immediately and are returned as unexpected.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var r *retryableError
	return errors.As(err, &r)
}

// Do runs op up to policy.MaxAttempts times.
//
// Retryable failures are absorbed: when they exhaust the attempts the returned
// Result has LastErr set and the error is nil. Any other failure, or a cancelled
// context, is returned as the error without further attempts.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context, attempt int) (T, error)) (Result[T], error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var result Result[T]
	for attempt := 1; attempt <= attempts; attempt++ {
		result.Attempts = attempt

		value, err := op(ctx, attempt)
		if err == nil {
			result.Value = value
			result.LastErr = nil
			return result, nil
		}
		if !IsRetryable(err) {
			return result, err
		}
		result.LastErr = err

		if attempt == attempts {
			break
		}

		delay := policy.Delay
		if errors.Is(err, ErrRateLimited) && policy.RateLimitDelay > 0 {
			delay = policy.RateLimitDelay
		}
		if err = sleep(ctx, delay); err != nil {
			return result, err
		}
	}

	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
