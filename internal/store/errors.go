package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a delete targets a record that is no longer
// in the store, so double-acknowledge bugs in the flush layer surface
// instead of vanishing.
var ErrNotFound = errors.New("record not found")

// PersistenceError wraps a failed durable write. Insert and delete paths
// return it whenever the underlying storage operation fails; no partial
// state is retained in that case.
type PersistenceError struct {
	// Op names the failed store operation, e.g. "insert event".
	Op string

	// Err is the underlying storage error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying storage error for errors.Is/As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistErr wraps err into a PersistenceError for the named operation.
func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
