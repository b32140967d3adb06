package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Storage error taxonomy. Backends wrap native errors with one of these so
// callers can branch with errors.Is regardless of the engine in use.
var (
	ErrValidation = errors.New("validation failed")
	ErrConnection = errors.New("connection failed")
	ErrQuery      = errors.New("query failed")
	ErrSchema     = errors.New("schema creation failed")
	ErrNotFound   = errors.New("entity not found")
	ErrState      = errors.New("invalid entity state")
	ErrClosed     = errors.New("connection is closed")
)

// Config errors.
var (
	ErrConfig         = errors.New("invalid configuration")
	ErrBackendEmpty   = fmt.Errorf("%w: backend must not be empty", ErrConfig)
	ErrBackendUnknown = fmt.Errorf("%w: unknown backend", ErrConfig)
)

// ValidationError reports a violated entity invariant together with the field
// it concerns, so a form can show the message next to the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// BatchError collects per-id failures of a batch operation that continued
// past individual errors.
type BatchError struct {
	Failed map[int64]error
}

// IDs returns the failed ids in ascending order.
func (e *BatchError) IDs() []int64 {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, id := range e.IDs() {
		parts = append(parts, fmt.Sprintf("%d: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("%d of batch failed (%s)", len(e.Failed), strings.Join(parts, "; "))
}

// Unwrap exposes the individual causes to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.IDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}
