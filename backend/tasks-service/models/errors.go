package models

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrForbidden    = errors.New("only the task creator may modify the task")
)

// ConflictError is returned when the client-supplied version is stale. It
// carries the server state so the caller can re-fetch and retry.
type ConflictError struct {
	Conflict TaskConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("task %s version conflict: client has %d, server has %d",
		e.Conflict.TaskID, e.Conflict.ClientVersion, e.Conflict.ServerVersion)
}

// StorageError wraps infrastructure failures from the backing store so
// handlers can tell them apart from domain failures.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
