// Package errors provides structured error types for ndorder.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP service and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Only three codes describe ordering outcomes a caller must react to:
//   - INVALID_SHAPE: the mode requires a square matrix and the input is not
//   - UNRECOGNIZED_MODE: the mode selector is not sym, row or col
//   - ORDERING_FAILED: an unrecoverable fault aborted the ordering; no
//     permutation was produced
//
// The remaining codes describe input handling around the engine (files,
// formats, options).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidShape, "matrix is %dx%d", m, n)
//	if errors.Is(err, errors.ErrCodeInvalidShape) {
//	    // Handle shape error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeOrderingFailed, origErr, "separator oracle")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Ordering errors
	ErrCodeInvalidShape     Code = "INVALID_SHAPE"
	ErrCodeUnrecognizedMode Code = "UNRECOGNIZED_MODE"
	ErrCodeOrderingFailed   Code = "ORDERING_FAILED"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidOptions Code = "INVALID_OPTIONS"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err aborted an ordering call. Callers must treat a
// fatal error as "no ordering produced".
func IsFatal(err error) bool {
	return Is(err, ErrCodeOrderingFailed)
}

// IsInput reports whether err was caused by caller input rather than by the
// ordering itself.
func IsInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidShape, ErrCodeUnrecognizedMode, ErrCodeInvalidInput,
		ErrCodeInvalidFormat, ErrCodeInvalidOptions:
		return true
	}
	return false
}
