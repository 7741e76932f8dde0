// Package errors provides structured error types for Gremlin.
//
// Every failure a fetch can end in is reported as an [*Error] carrying a
// machine-readable [Code] and a human-readable message. The message is what the
// UI shows to the user; the code tells callers which class of failure occurred.
//
// # Error Codes
//
//   - INVALID_*: Input or configuration validation failures
//   - NETWORK_ERROR, TIMEOUT: The transport failed before a response arrived
//   - HTTP_STATUS: The server answered with a non-success status code
//   - DECODE_ERROR: A response body could not be decoded as JSON
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "query too long: %d characters", n)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "%s", origErr.Error())
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidQuery  Code = "INVALID_QUERY"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Transport errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Application errors
	ErrCodeHTTPStatus Code = "HTTP_STATUS"
	ErrCodeDecode     Code = "DECODE_ERROR"
)

// DefaultMessage is used when a failure carries no usable message.
const DefaultMessage = "An error has occurred"

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
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
// For other errors, returns the error string as-is, or [DefaultMessage]
// when that string is empty.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultMessage
}
