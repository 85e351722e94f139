// Package errors provides structured error types for archboard.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the terminal editor and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - STORAGE_*: Durable store failures on load and autosave
//   - IMPORT_*: Rejected import documents
//   - EXPORT_*: Export preconditions
//   - INVALID_*: Input validation failures
//   - INTERNAL: Unexpected internal errors
//
// The storage, import and export codes form the editor's silent taxonomy:
// they are logged and then handled by fallback or no-op, never surfaced as
// fatal.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidEndpoint, "unknown node %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidEndpoint) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorageUnreadable, origErr, "read %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Load and import taxonomy
	ErrCodeStorageUnreadable  Code = "STORAGE_UNREADABLE"
	ErrCodeStorageCorrupt     Code = "STORAGE_CORRUPT"
	ErrCodeStorageUnwritable  Code = "STORAGE_UNWRITABLE"
	ErrCodeImportMalformed    Code = "IMPORT_MALFORMED"
	ErrCodeImportParseFailure Code = "IMPORT_PARSE_FAILURE"
	ErrCodeExportTargetAbsent Code = "EXPORT_TARGET_ABSENT"

	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidEndpoint    Code = "INVALID_ENDPOINT"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"

	// State errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeIDCollision Code = "ID_COLLISION"
	ErrCodeBusy        Code = "BUSY"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Silent reports whether err belongs to the taxonomy the editor absorbs
// without surfacing: storage, import and export-target failures.
func Silent(err error) bool {
	switch GetCode(err) {
	case ErrCodeStorageUnreadable, ErrCodeStorageCorrupt, ErrCodeStorageUnwritable,
		ErrCodeImportMalformed, ErrCodeImportParseFailure,
		ErrCodeExportTargetAbsent:
		return true
	}
	return false
}
