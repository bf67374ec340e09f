package task

import "errors"

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTask is returned when a task violates a storage constraint.
	ErrInvalidTask = errors.New("invalid task")
)
