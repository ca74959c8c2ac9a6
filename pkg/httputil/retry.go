package httputil

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// MaxBackoff caps the wait between two attempts of [Retry].
const MaxBackoff = 30 * time.Second

// RetryableError marks a failed request to the ordering service as worth
// repeating: the connection failed, the body was cut off, or the server
// answered with a status reported by [TransientStatus].
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Transient wraps err in a [RetryableError]. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// TransientStatus reports whether a response status may succeed on a later
// attempt: 429 and 5xx. A 4xx answer about the pattern or mode is final.
func TransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Retry calls fn until it succeeds, returns an error that is not a
// [RetryableError], or has been called attempts times. The wait starts at
// delay and doubles after every failure up to [MaxBackoff]. Cancelling ctx
// stops the wait and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, MaxBackoff)
	}
}

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
