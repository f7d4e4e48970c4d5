package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WritePolicy configures Write. Zero fields fall back to DefaultWritePolicy.
type WritePolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Jitter          float64
}

// DefaultWritePolicy is used by Write.
var DefaultWritePolicy = WritePolicy{
	MaxRetries:      4,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
	Jitter:          0.5,
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks a storage error (serialization failure, lock timeout, busy
// database) as safe to retry by Write.
func Transient(err error) error {
	if err == nil || IsTransient(err) {
		return err
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Write runs a write transaction, retrying transient failures with jittered
// exponential backoff. Non-transient errors are returned on first occurrence.
func Write(ctx context.Context, op func() error) error {
	return WriteWith(ctx, DefaultWritePolicy, op)
}

// WriteWith is Write with an explicit policy.
func WriteWith(ctx context.Context, policy WritePolicy, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = pick(policy.InitialInterval, DefaultWritePolicy.InitialInterval)
	b.MaxInterval = pick(policy.MaxInterval, DefaultWritePolicy.MaxInterval)
	b.RandomizationFactor = policy.Jitter
	if b.RandomizationFactor <= 0 {
		b.RandomizationFactor = DefaultWritePolicy.Jitter
	}
	b.MaxElapsedTime = 0

	retries := policy.MaxRetries
	if retries == 0 {
		retries = DefaultWritePolicy.MaxRetries
	}

	return backoff.Retry(func() error {
		err := op()
		if err == nil || IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx))
}

func pick(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
