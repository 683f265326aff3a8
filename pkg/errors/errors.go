// Package errors provides structured error types for the wsb page engine.
//
// Every failure surfaced to a caller (CLI, HTTP, MCP tool call) carries a
// machine-readable [Code] and a human-readable message naming the offending
// field or id, so an agent can adjust its next request.
//
// # Error Codes
//
//   - INVALID_*: payload or configuration validation failures
//   - NOT_FOUND: an id that does not resolve where absence is an error
//   - BATCH_FAILED: a batch aborted; nothing was persisted
//   - STORAGE / INTERNAL: persistence and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown fields: %s", names)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // report to the caller
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save page %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"
	ErrCodeInvalidDocument  Code = "INVALID_DOCUMENT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Batch errors
	ErrCodeBatchFailed Code = "BATCH_FAILED"

	// Persistence and internal errors
	ErrCodeStorage     Code = "STORAGE"
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
// The outermost *Error wins, so a BATCH_FAILED error wrapping a validation
// error reports BATCH_FAILED.
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
// For *Error types, returns the message (and the cause's message) without
// code prefixes. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
