package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a class of application error.
type Code string

const (
	ErrInvalidRequest Code = "INVALID_REQUEST" // 400
	ErrUnauthorized   Code = "UNAUTHORIZED"    // 401
	ErrNotFound       Code = "NOT_FOUND"       // 404
	ErrConflict       Code = "CONFLICT"        // 409
	ErrInternal       Code = "INTERNAL"        // 500
)

// Error is a structured error with code, HTTP status, and details.
type Error struct {
	Code    Code
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid input.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for missing or bad credentials.
func NewUnauthorized(msg string) *Error {
	return &Error{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(kind, identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewConflict creates a 409 error.
func NewConflict(msg string) *Error {
	return &Error{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error wrapping an unexpected failure.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err, or any error it wraps, is an *Error with the given code.
func Is(err error, code Code) bool {
	var aErr *Error
	if errors.As(err, &aErr) {
		return aErr.Code == code
	}
	return false
}
