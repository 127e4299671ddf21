package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
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

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	// ErrInvalidFile rejects uploads before any version bookkeeping happens.
	ErrInvalidFile = New("INVALID_FILE", http.StatusBadRequest, "file type or size not accepted")
	// ErrQuotaExceeded is a soft business failure: the revision ceiling was
	// reached and no state was mutated.
	ErrQuotaExceeded = New("QUOTA_EXCEEDED", http.StatusUnprocessableEntity, "revision quota exhausted")
	// ErrNotFound covers missing entities and unknown access tokens alike, so
	// a bad capability token is indistinguishable from a missing project.
	ErrNotFound = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	// ErrProjectClosed rejects mutating actions on a completed project.
	ErrProjectClosed = New("PROJECT_CLOSED", http.StatusConflict, "project is completed and archived")
	// ErrFileLocked is returned when a client requests a file whose download
	// gate is closed.
	ErrFileLocked = New("FILE_LOCKED", http.StatusForbidden, "file is not released for download")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss  = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

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

// Clone returns a copy of the error allowing for message overrides.
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
