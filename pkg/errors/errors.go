// Package errors provides structured error types for cubeskin.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror how a skin generation run treats each failure:
//   - MALFORMED_INPUT: unparsable block tables; logged, the table is dropped
//   - MISSING_ASSET: a face texture is absent; only that block is excluded
//   - CLASSIFICATION_REJECT: a face is semi-transparent; only that block is excluded
//   - DECODE_FAILURE: an expected image fails to decode; the run aborts
//   - INVALID_*: input validation failures reported before a run starts
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown merge mode: %s", mode)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecodeFailure, origErr, "decode %s", path)
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
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidArchive    Code = "INVALID_ARCHIVE"
	ErrCodeInvalidMergeMode  Code = "INVALID_MERGE_MODE"
	ErrCodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Run-time categories of a skin generation run
	ErrCodeMalformedInput       Code = "MALFORMED_INPUT"
	ErrCodeMissingAsset         Code = "MISSING_ASSET"
	ErrCodeClassificationReject Code = "CLASSIFICATION_REJECT"
	ErrCodeDecodeFailure        Code = "DECODE_FAILURE"
	ErrCodeIncompleteFaceSet    Code = "INCOMPLETE_FACE_SET"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// Fatal reports whether an error must abort a whole generation run.
// Block-level categories (missing assets, classification rejects, malformed
// tables) are recoverable; everything else is not.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetCode(err) {
	case ErrCodeMissingAsset, ErrCodeClassificationReject, ErrCodeMalformedInput:
		return false
	}
	return true
}
