// Package errors defines the catalog's error vocabulary: sentinels for
// errors.Is checks and AppError for values that carry an API code and an
// HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// kind ties a sentinel to its API code and status.
type kind struct {
	sentinel error
	code     string
	status   int
}

var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrAlreadyExists, "ALREADY_EXISTS", http.StatusConflict},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{ErrConflict, "CONFLICT", http.StatusConflict},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
	{ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
}

func lookup(sentinel error) kind {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return k
		}
	}
	return kinds[len(kinds)-1]
}

// AppError is an error that knows its API code and HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(sentinel error, message string) *AppError {
	k := lookup(sentinel)
	return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
}

// NotFound reports a missing resource, e.g. NotFound("listing", id).
func NotFound(resource, id string) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

func AlreadyExists(resource, field, value string) *AppError {
	return newError(ErrAlreadyExists, fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

func InvalidInput(message string) *AppError { return newError(ErrInvalidInput, message) }

func Unauthorized(message string) *AppError { return newError(ErrUnauthorized, message) }

func Forbidden(message string) *AppError { return newError(ErrForbidden, message) }

// Conflict is for state conflicts other than duplicates, such as a reindex
// that is already running.
func Conflict(message string) *AppError { return newError(ErrConflict, message) }

// Unavailable reports a missing or failing dependency. cause defaults to
// ErrServiceUnavail so errors.Is still matches.
func Unavailable(message string, cause error) *AppError {
	e := newError(ErrServiceUnavail, message)
	if cause != nil {
		e.Err = cause
	}
	return e
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	e := newError(ErrInternal, "an internal error occurred")
	e.Err = cause
	return e
}

// HTTPStatus maps err to a status: an AppError's own status, else the
// status of the first sentinel it wraps, else 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}
