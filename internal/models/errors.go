package models

import (
	"errors"
	"fmt"
)

// ErrNotInWorkspace is returned when a resource cannot be mapped to a project
// root, so no relative path can be computed. It aborts the whole expansion.
var ErrNotInWorkspace = errors.New("resource is not inside the project root")

// Validation reasons. They are wrapped in a *ValidationError and can be matched
// with errors.Is.
var (
	ErrEmptyContent    = errors.New("content is empty")
	ErrContentTooLarge = errors.New("content exceeds maximum size")
	ErrEmptyPath       = errors.New("relative path is empty")
	ErrClipboardFull   = errors.New("clipboard is full")
	ErrInvalidName     = errors.New("list name is empty")
	ErrDuplicateName   = errors.New("a list with that name already exists")
	ErrTooManyLists    = errors.New("maximum number of lists reached")
	ErrDuplicateEntry  = errors.New("entry already in list")
	ErrListFull        = errors.New("list is full")
	ErrListNotFound    = errors.New("list not found")
	ErrIndexOutOfRange = errors.New("entry index out of range")
	ErrEmptyList       = errors.New("list is empty")
)

// ValidationError reports an entry or list operation rejected by a cap,
// a duplicate rule or a naming rule. It is never fatal.
type ValidationError struct {
	Subject string // path, list name or list id the rule was applied to
	Reason  error
}

// NewValidationError wraps reason with the subject it was raised for.
func NewValidationError(subject string, reason error) *ValidationError {
	return &ValidationError{Subject: subject, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %v", e.Subject, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// ReadError reports a single file or directory that could not be read.
// Walkers skip the resource and continue.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// PersistenceError reports a failed load or save of the stored lists.
type PersistenceError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s lists: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
