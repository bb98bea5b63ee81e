// Package errs holds the error kinds returned by the form, inventory and
// order components. The HTTP layer maps each kind to a status code.
package errs

import (
	"fmt"
	"strings"
)

// ValidationError reports input the caller can fix. Fields names the
// offending field ids or definition indexes, when there are any.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Fields, ", "))
}

func Validation(msg string, fields ...string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError means the operation would break an invariant of the stored data.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// StorageError wraps a persistence failure. Op is a dotted code such as
// "db.insert_submission.commit" that ends up in the logs, never in responses.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
