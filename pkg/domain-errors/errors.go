// Package domainerrors carries the service-level error taxonomy. Services return
// *Error values; transports translate the Code into a status without inspecting
// messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeUnavailable        Code = "service_unavailable"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error is a coded error. Message is safe to show to callers except for
// CodeInternal, whose message is only logged.
type Error struct {
	Code    Code
	Message string
	// Details holds ordered, user-facing messages (validation failures).
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation builds a CodeValidation error carrying every failure message.
func Validation(details []string) *Error {
	msg := "invalid submission"
	if len(details) == 1 {
		msg = details[0]
	}
	return &Error{Code: CodeValidation, Message: msg, Details: append([]string(nil), details...)}
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Messages returns the user-facing messages of err: Details when present,
// otherwise the message. Internal errors never expose their message.
func Messages(err error) []string {
	var de *Error
	if !errors.As(err, &de) || de.Code == CodeInternal {
		return []string{"Ocurrió un error al procesar la solicitud. Por favor, intente nuevamente más tarde."}
	}
	if len(de.Details) > 0 {
		return append([]string(nil), de.Details...)
	}
	return []string{de.Message}
}
