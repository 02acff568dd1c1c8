// Package apperrors defines the domain errors services return and the HTTP
// status each one maps to.
//
//	if taken {
//	    return apperrors.AlreadyExists("Email already in use")
//	}
//
// Handlers render any error with its mapped status; errors that are not
// *Error become a 500 with a generic message.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeValidation    Code = "VALIDATION"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the status code for an error code.
// AlreadyExists is a 400 because clients treat it as a form error.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeAlreadyExists:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, a client-facing message and optional
// extra response fields.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithField returns a copy carrying an extra response field.
func (e *Error) WithField(key string, value any) *Error {
	fields := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &Error{Code: e.Code, Message: e.Message, Fields: fields, cause: e.cause}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Fields: e.Fields, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "Not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "Already exists"}
	ErrUnauthorized  = &Error{Code: CodeUnauthorized, Message: "Unauthorized"}
	ErrForbidden     = &Error{Code: CodeForbidden, Message: "Forbidden"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "Validation failed"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "Server error"}
)

func NotFound(msg string) *Error      { return &Error{Code: CodeNotFound, Message: msg} }
func AlreadyExists(msg string) *Error { return &Error{Code: CodeAlreadyExists, Message: msg} }
func Unauthorized(msg string) *Error  { return &Error{Code: CodeUnauthorized, Message: msg} }
func Forbidden(msg string) *Error     { return &Error{Code: CodeForbidden, Message: msg} }
func Validation(msg string) *Error    { return &Error{Code: CodeValidation, Message: msg} }

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is logged, never shown.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// As extracts the domain error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for any error; non-domain errors are 500.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
