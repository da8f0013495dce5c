package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable is returned when a cache backend cannot be reached.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrInvalidURL is returned for malformed backend connection strings.
	ErrInvalidURL = errors.New("invalid cache URL")
)

// transientError marks a failure worth retrying.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// transient marks err as retryable. A nil err stays nil.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

func isTransient(err error) bool {
	var te transientError
	return errors.As(err, &te)
}

// backoff controls retry of backend connections.
var backoff = struct {
	attempts int
	initial  time.Duration
}{attempts: 3, initial: 200 * time.Millisecond}

// retry calls fn until it succeeds, returns a non-transient error, or the
// attempts run out. The delay doubles after each failed attempt.
func retry(ctx context.Context, fn func() error) error {
	delay := backoff.initial
	var err error
	for attempt := 1; attempt <= backoff.attempts; attempt++ {
		if err = fn(); err == nil || !isTransient(err) {
			return err
		}
		if attempt == backoff.attempts {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}
