// Package apperrors defines the error taxonomy shared by the discovery and
// registration engine and its HTTP transport.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed domain error carrying the HTTP status it maps to.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so wrapped copies still compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinels. Compare with errors.Is.
var (
	ErrValidation        = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound          = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrAlreadyRegistered = New("ALREADY_REGISTERED", http.StatusConflict, "person is already registered")
	ErrNotRegistered     = New("NOT_REGISTERED", http.StatusConflict, "person is not registered")
	ErrCapacityExceeded  = New("CAPACITY_EXCEEDED", http.StatusUnprocessableEntity, "announcement is full")
	ErrConflict          = New("CONFLICT", http.StatusConflict, "announcement changed concurrently, retry later")
	ErrQueryExecution    = New("QUERY_EXECUTION_ERROR", http.StatusInternalServerError, "query execution failed")
	ErrConsistencyRepair = New("CONSISTENCY_REPAIR_ERROR", http.StatusInternalServerError, "consistency repair failed")
	ErrUnauthorized      = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden         = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnavailable       = New("UNAVAILABLE", http.StatusServiceUnavailable, "service unavailable")
	ErrInternal          = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Clone returns a copy of a sentinel with a more specific message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Validation returns a validation error wrapping the cause.
func Validation(err error) *Error {
	return Wrap(err, ErrValidation.Code, ErrValidation.Status, ErrValidation.Message)
}

// QueryExecution returns a query execution error wrapping the store failure.
func QueryExecution(err error) *Error {
	return Wrap(err, ErrQueryExecution.Code, ErrQueryExecution.Status, ErrQueryExecution.Message)
}

// ConsistencyRepair returns a repair error for a single failed item.
func ConsistencyRepair(item string, err error) *Error {
	return Wrap(err, ErrConsistencyRepair.Code, ErrConsistencyRepair.Status, fmt.Sprintf("repair of %s failed", item))
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}
