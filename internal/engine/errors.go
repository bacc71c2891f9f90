package engine

import "errors"

var (
	// ErrConflict indicates a batch is inconsistent with the open loans.
	ErrConflict = errors.New("conflict detected")

	// ErrValidation indicates a validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a correction target was not found.
	ErrNotFound = errors.New("not found")
)
