// Package errors provides structured error types for orgtree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The layout pipeline distinguishes three failure classes:
//   - STRUCTURAL: the input graph is not a tree (cycle, disconnected
//     component, several roots). Layout refuses to run.
//   - PRECONDITION: the tree is fine but the call is not (root absent,
//     level map inconsistent with the tree, bad extents).
//   - INVALID_INPUT_FORMAT: the outline text itself is malformed and the
//     builder runs in strict mode.
//
// The remaining codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodePrecondition, "root %q not in tree", id)
//	if errors.Is(err, errors.ErrCodePrecondition) {
//	    // Handle bad call
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStructural, tree.ErrGraphHasCycle, "cannot lay out %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout failure classes
	ErrCodeStructural   Code = "STRUCTURAL"
	ErrCodePrecondition Code = "PRECONDITION"
	ErrCodeInputFormat  Code = "INVALID_INPUT_FORMAT"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidEncoding Code = "INVALID_ENCODING"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

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
// Only the outermost *Error is consulted, so re-wrapping with a new code
// replaces the classification.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsStructural reports whether err says the input graph is not a tree.
func IsStructural(err error) bool { return Is(err, ErrCodeStructural) }

// IsPrecondition reports whether err is a precondition violation.
func IsPrecondition(err error) bool { return Is(err, ErrCodePrecondition) }

// IsInputFormat reports whether err is a malformed-outline error.
func IsInputFormat(err error) bool { return Is(err, ErrCodeInputFormat) }

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

// LineError locates an input format problem in the source document.
type LineError struct {
	Line int    // 1-based line number
	Text string // Offending line, without terminator
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q", e.Line, e.Text)
}

// Code returns the error code for this error type.
func (e *LineError) Code() Code {
	return ErrCodeInputFormat
}
