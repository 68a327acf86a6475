// Package storage defines the persistence interfaces for run records and
// their shared error vocabulary. Run history is append-only: records are
// inserted once and never updated.
package storage

import "errors"

var (
	// ErrNotFound reports a lookup for a record that was never inserted.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey reports an insert whose key already exists. There is
	// no update path; a conflicting insert is always an error.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput reports a record or query that fails validation
	// before touching the backend.
	ErrInvalidInput = errors.New("invalid input")
)
