package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig    = "CONFIG"
	ErrTransport = "TRANSPORT"
	ErrNormalize = "NORMALIZE"
	ErrExhausted = "EXHAUSTED"
	ErrExec      = "EXEC"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message and suggestion, defaulting to
// ErrTransport code.
func Wrap(err error, message, suggestion string) *Error {
	return &Error{
		Code:       ErrTransport,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewExhausted creates the terminal error for when automatic reconnection gives up.
// The dashboard stays interactive; recovery requires a manual refresh or the
// terminal regaining focus.
func NewExhausted(attempts int) *Error {
	return &Error{
		Code:       ErrExhausted,
		Message:    fmt.Sprintf("Gave up after %d reconnect attempts", attempts),
		Suggestion: "Press 'r' to retry, or check that the server is reachable",
	}
}

// Error implements the error interface with formatted output.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	// Include cause if present (why it failed)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var lvErr *Error
	if errors.As(err, &lvErr) {
		return lvErr.Code == code
	}
	return false
}
