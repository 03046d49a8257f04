package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every stage of the projection pipeline.
// Callers should match with errors.Is.
var (
	// ErrInvalidInput marks malformed or out-of-range assumption, archetype or
	// waterfall values. A run aborts on the first one.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConvergence marks an IRR that could not be bracketed or solved.
	// It is reported per entity and never aborts the run.
	ErrNoConvergence = errors.New("no convergence")

	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = errors.New("not found")
)

// ValidationError describes one rejected input value
type ValidationError struct {
	Entity string // property name, "assumptions", "waterfall", ...
	Field  string
	Value  string
	Reason string
}

// NewValidationError builds a ValidationError, formatting value with %v
func NewValidationError(entity, field string, value any, reason string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Field:  field,
		Value:  fmt.Sprintf("%v", value),
		Reason: reason,
	}
}

func (e *ValidationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %s=%s %s", ErrInvalidInput, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s=%s %s", ErrInvalidInput, e.Entity, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
