// Package domainerrors carries the error taxonomy shared by services and the
// transport layer. Services return *Error values tagged with a Code; handlers
// translate codes to transport statuses without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure independent of any transport.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"

	// PIX key business rules. All are caller-correctable.
	CodeDuplicateKey             Code = "duplicate_key"
	CodeLimitExceeded            Code = "limit_exceeded"
	CodeInvalidKeyType           Code = "invalid_key_type"
	CodeInvalidKeyFormat         Code = "invalid_key_format"
	CodeInactiveKey              Code = "inactive_key"
	CodeAlreadyInactive          Code = "already_inactive"
	CodeEmptyFilterSet           Code = "empty_filter_set"
	CodeConflictingDateFilters   Code = "conflicting_date_filters"
	CodeInvalidFilterCombination Code = "invalid_filter_combination"
)

// Error is a coded domain error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code, and by message when the target has one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// New builds a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(cause error, code Code, message string) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// As extracts the outermost *Error from the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost coded error in err's chain carries code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is shorthand for HasCode, kept for call sites that read better as a predicate.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost coded error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}
