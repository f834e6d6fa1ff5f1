package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnknownField = errors.New("unknown field")
	ErrEmptyScope   = errors.New("empty history scope")
)

// Error carries the operation, entity kind and id of a failed store call.
type Error struct {
	Op   string
	Kind string
	ID   string
	Err  error
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound returns an *Error wrapping ErrNotFound.
func NotFound(op, kind, id string) error {
	return &Error{Op: op, Kind: kind, ID: id, Err: ErrNotFound}
}

// Invalid returns an *Error wrapping ErrValidation with a message.
func Invalid(op, kind, id, msg string) error {
	return &Error{Op: op, Kind: kind, ID: id, Err: fmt.Errorf("%w: %s", ErrValidation, msg)}
}

// IsNotFound reports whether err is caused by a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether err is caused by bad input rather than
// a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnknownField) || errors.Is(err, ErrEmptyScope)
}
