// Package errors provides structured error types for the glyptodon core.
//
// Every failure reported to the presentation layer carries a machine-readable
// code and the identifier of the offending record (a CSV row, an uploaded file
// name, a manuscript name). Callers branch on the code, users see the message.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (never retried)
//   - COLLISION: A derived manuscript name is already taken
//   - NOT_FOUND / AMBIGUOUS_METADATA: Catalog lookup failures
//   - IO_ERROR / INTERNAL_ERROR: Filesystem and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCollision, name, "manuscript directory already exists")
//	if errors.Is(err, errors.ErrCodeCollision) {
//	    // Ask the user for a different title
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, path, "failed to write metadata")
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidCSV      Code = "INVALID_CSV"
	ErrCodeInvalidImage    Code = "INVALID_IMAGE"
	ErrCodeInvalidMetadata Code = "INVALID_METADATA"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Catalog errors
	ErrCodeCollision         Code = "COLLISION"
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeAmbiguousMetadata Code = "AMBIGUOUS_METADATA"

	// Filesystem and internal errors
	ErrCodeIO       Code = "IO_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, the offending identifier and an
// optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Subject string // Offending identifier (file, row, manuscript); may be empty
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code, subject and formatted message.
func New(code Code, subject, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, subject, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Subject: subject,
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

// SubjectOf returns the offending identifier recorded on err, if any.
func SubjectOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Subject
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the subject and message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Subject != "" {
			return e.Subject + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
