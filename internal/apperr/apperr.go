// Package apperr defines the error value shared by every worklog package
package apperr

import "fmt"

// Error is a sentinel-friendly error. Package-level values act as sentinels;
// Fmt and Wrap derive copies that still match their sentinel with errors.Is.
type Error struct {
	Cause   error
	base    *Error
	Message string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}

	return e.Message
}

// Fmt returns a copy of the error with its message formatted with the given
// arguments.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Cause:   e.Cause,
		base:    e.root(),
	}
}

// Wrap returns a copy of the error that records err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Message: e.Message,
		Cause:   err,
		base:    e.root(),
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel (or a copy of the sentinel) that
// e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}
