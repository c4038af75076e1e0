package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

// unavailable signals that the data store could not be reached (e.g. it failed to load).
type unavailable struct {
	err error
}

func NewUnavailableError(err error) error {
	return &unavailable{err: err}
}

func (u unavailable) Error() string {
	if u.err == nil {
		return "store unavailable"
	}
	return "store unavailable: " + u.err.Error()
}

func (u unavailable) Unwrap() error { return u.err }

func IsUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*unavailable)
	return ok
}
