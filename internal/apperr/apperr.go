// Package apperr defines the error taxonomy shared by the auth and books
// flows and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	CodeValidation      Code = "VALIDATION"
	CodeConflict        Code = "CONFLICT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConfiguration   Code = "CONFIGURATION"
	CodeInternal        Code = "INTERNAL"
)

// InternalMessage is the only message clients see for unclassified failures.
const InternalMessage = "Internal server error"

// HTTPStatus maps a code to the status written on the wire.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldError is a single failed input rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the domain error type.
type Error struct {
	Code    Code
	Message string // user-facing
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks against a class.
var (
	ErrValidation      = &Error{Code: CodeValidation}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrConfiguration   = &Error{Code: CodeConfiguration}
	ErrInternal        = &Error{Code: CodeInternal}
)

// Validation builds a validation error whose message is the first field's.
func Validation(fields ...FieldError) *Error {
	msg := "Invalid input"
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Configuration(msg string) *Error {
	return &Error{Code: CodeConfiguration, Message: msg}
}

// Internal wraps an unclassified failure. The cause is kept for logs only.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: InternalMessage, Cause: cause}
}

// CodeOf returns the code carried by err, or CodeInternal if err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// PublicMessage returns the message safe to show a client. Internal and
// configuration failures never expose their text.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return InternalMessage
	}
	switch e.Code {
	case CodeInternal, CodeConfiguration:
		return InternalMessage
	}
	return e.Message
}

// FieldsOf returns the field errors carried by a validation error.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
