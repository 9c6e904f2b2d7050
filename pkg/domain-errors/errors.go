// Package domainerrors provides coded errors shared across services and
// transports. Services return these; the HTTP layer maps codes to status
// codes without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and audit logging.
type Code string

const (
	// CodeInvalidInput marks malformed or out-of-range caller input.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a missing rule, policy version, or record.
	CodeNotFound Code = "not_found"
	// CodeConflict marks duplicate registrations (e.g. rule id already present).
	CodeConflict Code = "conflict"
	// CodeFailedPrecondition marks a state-machine transition attempted from
	// the wrong state, or a timing gate that has not yet opened.
	CodeFailedPrecondition Code = "failed_precondition"
	// CodeUnauthorized marks missing or invalid admin credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks infrastructure faults. Descriptions are never
	// surfaced to clients for this code.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. The zero value is not valid; construct via
// New or Wrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause remains
// reachable via errors.Unwrap for logging; transports only see code+message.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the Code from err, walking the wrap chain. Unclassified
// errors report CodeInternal so they are never leaked to clients.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// MessageOf extracts the client-safe message from err. Unclassified errors
// yield an empty message.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
