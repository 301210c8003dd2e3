package repository

import (
	"errors"
	"fmt"
)

// ErrPersistence is matched by every *PersistenceError.
var ErrPersistence = errors.New("persistence failure")

// PersistenceError reports a storage read or write failure, including stored rows
// that can no longer be turned back into valid articles.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
