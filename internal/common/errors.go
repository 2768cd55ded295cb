// Package common defines the error taxonomy shared by every feature package.
// Callers match kinds with errors.Is; the HTTP layer maps kinds to status codes.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers missing records and records owned by another user.
	ErrNotFound = errors.New("not found")

	// ErrConflict is a state conflict such as starting a second timer.
	ErrConflict = errors.New("conflict")

	ErrValidation = errors.New("validation error")

	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable means an optional backend (cache, archive storage) is not configured.
	ErrUnavailable = errors.New("unavailable")
)

// KindError attaches a client-facing message to one of the sentinel kinds.
type KindError struct {
	Kind    error
	Message string
}

func (e *KindError) Error() string { return e.Message }

func (e *KindError) Unwrap() error { return e.Kind }

func NotFound(msg string) error { return &KindError{Kind: ErrNotFound, Message: msg} }

func Conflict(msg string) error { return &KindError{Kind: ErrConflict, Message: msg} }

func Unauthorized(msg string) error { return &KindError{Kind: ErrUnauthorized, Message: msg} }

func Unavailable(msg string) error { return &KindError{Kind: ErrUnavailable, Message: msg} }

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Add appends a field error and returns the receiver for chaining.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
	return e
}

// OrNil returns e when it holds at least one field error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func Invalid(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

// Message returns the client-facing message of err, falling back to fallback.
func Message(err error, fallback string) string {
	var ke *KindError
	if errors.As(err, &ke) && ke.Message != "" {
		return ke.Message
	}
	return fallback
}
