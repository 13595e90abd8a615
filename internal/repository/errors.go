package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a store constraint,
	// such as an INDEXED document without a remote file id
	ErrConflict = errors.New("conflict: write violates a store constraint")

	// ErrInvalidTransition is returned when a status change would violate
	// the document state machine
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
