// Package errors provides structured error types for heatposter.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code], so the CLI and the HTTP API can map it to an exit status, a status
// code or a short user message without string matching.
//
// # Error Codes
//
// Codes follow a coarse naming convention:
//   - INVALID_*, EMPTY_*, NEGATIVE_*: input that violates a precondition
//   - NOT_FOUND: a referenced resource is missing
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: data source transport failures
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// Precondition failures are detected before any drawing primitive is emitted.
// Use [IsPrecondition] to test for the whole family.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNegativeValue, "value %v on %s is negative", v, d)
//	if errors.IsPrecondition(err) {
//	    // reject the request
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "query database %s", id)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodePrecondition   Code = "PRECONDITION_FAILED"
	ErrCodeInvalidDate    Code = "INVALID_DATE"
	ErrCodeInvalidYear    Code = "INVALID_YEAR"
	ErrCodeNegativeValue  Code = "NEGATIVE_VALUE"
	ErrCodeEmptyTypes     Code = "EMPTY_TYPES"
	ErrCodeEmptyYears     Code = "EMPTY_YEARS"
	ErrCodeInvalidLayout  Code = "INVALID_LAYOUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidColor   Code = "INVALID_COLOR"
	ErrCodeInvalidCanvas  Code = "INVALID_CANVAS"
	ErrCodeInvalidSource  Code = "INVALID_SOURCE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// preconditionCodes lists the codes that reject input before rendering.
var preconditionCodes = map[Code]bool{
	ErrCodePrecondition:  true,
	ErrCodeInvalidDate:   true,
	ErrCodeInvalidYear:   true,
	ErrCodeNegativeValue: true,
	ErrCodeEmptyTypes:    true,
	ErrCodeEmptyYears:    true,
	ErrCodeInvalidLayout: true,
	ErrCodeInvalidFormat: true,
	ErrCodeInvalidColor:  true,
	ErrCodeInvalidCanvas: true,
	ErrCodeInvalidInput:  true,
}

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

// IsPrecondition reports whether err rejects structurally invalid input.
func IsPrecondition(err error) bool {
	return preconditionCodes[GetCode(err)]
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.Code()
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

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
