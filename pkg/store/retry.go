package store

import (
	"context"
	"errors"
	"time"
)

// Connection attempts made by OpenRedis and OpenMongo before giving up.
const (
	connectAttempts = 3
	connectDelay    = 250 * time.Millisecond
)

// transientError marks a failure worth another attempt, such as a server
// that is still starting.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// retry runs fn up to attempts times, doubling delay after each transient
// failure. Other errors are returned at once; so is ctx.Err() when ctx ends
// while waiting. The returned error is never wrapped in transientError.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error
	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = te.err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
