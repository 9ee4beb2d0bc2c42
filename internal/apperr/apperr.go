// Package apperr defines the error kinds a generation run can fail with.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfiguration Kind = "ConfigurationError"
	KindAPI           Kind = "ApiError"
	KindFormat        Kind = "FormatError"
	KindIO            Kind = "IOError"
)

// Error is a fatal run error tagged with its kind.
// Detail holds diagnostic text, e.g. the raw model response for a FormatError.
type Error struct {
	Kind   Kind
	Op     string
	Err    error
	Detail string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Configuration(op string, err error) *Error {
	return newError(KindConfiguration, op, err)
}

func API(op string, err error) *Error {
	return newError(KindAPI, op, err)
}

func IO(op string, err error) *Error {
	return newError(KindIO, op, err)
}

// Format reports a model response that failed validation, keeping the raw text.
func Format(op string, err error, raw string) *Error {
	e := newError(KindFormat, op, err)
	e.Detail = raw
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
