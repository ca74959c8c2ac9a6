package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/ndorder/pkg/errors"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("503")}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err=%v calls=%d, want success after 3 calls", err, calls)
	}

	calls = 0
	permanent := errors.New("400")
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("err=%v calls=%d, want immediate failure", err, calls)
	}

	calls = 0
	err = Retry(ctx, 0, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: errors.New("x")}
	})
	if calls != 1 || !IsRetryable(err) {
		t.Errorf("attempts=0 should run once, calls=%d err=%v", calls, err)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("timeout")}
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryStopsOnDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		return Transient(errors.New("502"))
	})
	if err != context.DeadlineExceeded || calls != 1 {
		t.Errorf("err=%v calls=%d, want deadline after the first call", err, calls)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	base := errors.New("connection reset")
	err := Transient(base)
	if !IsRetryable(err) || !errors.Is(err, base) {
		t.Errorf("Transient(%v) = %v, want a retryable wrapper", base, err)
	}
	if IsRetryable(fmt.Errorf("decode: %w", base)) {
		t.Error("plain errors are not retryable")
	}
}

func TestTransientStatus(t *testing.T) {
	for code, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusBadRequest:          false,
		http.StatusUnprocessableEntity: false,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusServiceUnavailable:  true,
	} {
		if got := TransientStatus(code); got != want {
			t.Errorf("TransientStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrCodeInvalidShape, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeUnrecognizedMode, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeInvalidOptions, "x"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", errs.New(errs.ErrCodeInvalidInput, "x")), http.StatusBadRequest},
		{errs.New(errs.ErrCodeOrderingFailed, "x"), http.StatusUnprocessableEntity},
		{errs.New(errs.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errs.New(errs.ErrCodeInvalidShape, "matrix is 2x3"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	err := ReadError(rec.Result())
	if !errs.Is(err, errs.ErrCodeInvalidShape) || errs.UserMessage(err) != "matrix is 2x3" {
		t.Errorf("ReadError = %v", err)
	}

	rec = httptest.NewRecorder()
	WriteError(rec, errors.New("secret path /var/db"))
	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("internal error details should not leak")
	}
}

func TestDecodeJSON(t *testing.T) {
	type req struct {
		N int `json:"n"`
	}
	var v req
	if err := DecodeJSON(strings.NewReader(`{"n": 3}`), 1024, &v); err != nil || v.N != 3 {
		t.Errorf("DecodeJSON = %v, %+v", err, v)
	}

	bad := []string{
		`{"n": 3, "m": 1}`,
		`{"n": `,
		`{"n": 1} {"n": 2}`,
		`{"n": 100000000000000000000000}`,
		`{"n": 1, "pad": "` + strings.Repeat("x", 2048) + `"}`,
	}
	for _, body := range bad {
		if err := DecodeJSON(strings.NewReader(body), 1024, &v); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("DecodeJSON(%.20q) = %v, want INVALID_INPUT", body, err)
		}
	}
}
