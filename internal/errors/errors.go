// Package errors provides structured, user-facing errors for pstop.
//
// Sampling code never surfaces errors to the user; these types are for the
// outer surfaces (command line, configuration, process control) where a
// message and a suggested fix are printed.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig   = "CONFIG"
	ErrSample   = "SAMPLE"
	ErrProcess  = "PROCESS"
	ErrControl  = "CONTROL"
	ErrTerminal = "TERMINAL"
)

// Sentinel errors shared by the sampling and control layers.
var (
	// ErrUnsupported is returned when the running platform lacks a capability.
	ErrUnsupported = errors.New("not supported on this platform")
	// ErrNotFound is returned when a process or resource no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when the OS denies access.
	ErrPermission = errors.New("permission denied")
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

// Wrap wraps an existing error with a message, defaulting to ErrSample code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrSample,
		Message: message,
		Cause:   err,
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

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

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
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}
