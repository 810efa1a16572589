// Package domainerrors provides coded errors that cross the service boundary.
// Services attach a Code so transport layers can translate failures into HTTP
// statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of failure. The string value is the wire-level error
// code returned to callers.
type Code string

const (
	CodeBadRequest  Code = "bad_request"
	CodeValidation  Code = "validation_error"
	CodeNotFound    Code = "not_found"
	CodeConflict    Code = "conflict"
	CodeTimeout     Code = "timeout"
	CodeUnavailable Code = "storage_unavailable"
	CodeInternal    Code = "internal_error"
)

// Error carries a code, a caller-facing message, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasCode is an alias for Is, kept for call-site readability in assertions.
func HasCode(err error, code Code) bool {
	return Is(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so nothing leaks as a 200.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status used by the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
