package collection

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no collection matches the requested id.
	ErrNotFound = errors.New("collection not found")
	// ErrStorage wraps a failure to write the collections blob. Callers must
	// surface it; the change was not saved.
	ErrStorage = errors.New("failed to save collections")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid collection data")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
