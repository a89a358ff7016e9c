package core

import (
	"fmt"

	"github.com/pkg/errors"
)

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
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// DecodeError is returned when a serialized column cannot be decoded into its Go type.
type DecodeError struct {
	Column string
	Err    error
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("decoding column %q: %v", err.Column, err.Err)
}

func (err DecodeError) Unwrap() error { return err.Err }

func NewDecodeError(column string, err error) error {
	return &DecodeError{Column: column, Err: err}
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
