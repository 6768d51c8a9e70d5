// Package shared holds cross-module primitives: the error taxonomy and pagination.
package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors kept for errors.Is checks at the HTTP edge.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a caller-correctable precondition failure. It is
// always raised before any persistence call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is lets errors.Is(err, ErrValidation) match typed validation failures.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// NotFoundError reports a missing entity where existence was required.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// PersistenceError wraps a failed store call with the operation that issued it.
// The store's diagnostic message is preserved for the caller; the core never
// retries on its own.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err unless it already carries a taxonomy type,
// so service layers can wrap blindly after repository calls.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	var pe *PersistenceError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
