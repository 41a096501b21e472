package errors

import (
	"errors"
	"fmt"
)

// Error represents a failure with a PostgreSQL-compatible SQLSTATE code.
type Error struct {
	Code    string // SQLSTATE code
	Message string // Primary error message
	Detail  string // Optional detailed error message
	Hint    string // Optional hint message
	Path    string // File the error refers to, if any
	Routine string // Operation that failed

	cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Routine != "" {
		msg = e.Routine + ": " + msg
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (SQLSTATE %s) DETAIL: %s", msg, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s (SQLSTATE %s)", msg, e.Code)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a new Error with the given code and message
func New(code string, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with a formatted message
func Newf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error that keeps err as its cause.
func Wrap(err error, code string, message string) *Error {
	e := New(code, message)
	e.cause = err
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// WithDetail adds detail to the error
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithDetailf adds formatted detail to the error
func (e *Error) WithDetailf(format string, args ...interface{}) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint adds a hint to the error
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithPath sets the file the error refers to
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithRoutine sets the failing operation
func (e *Error) WithRoutine(routine string) *Error {
	e.Routine = routine
	return e
}

// IsError checks if err is, or wraps, an Error with a specific code
func IsError(err error, code string) bool {
	var qErr *Error
	return errors.As(err, &qErr) && qErr.Code == code
}

// GetError attempts to extract an Error from any error
func GetError(err error) *Error {
	if err == nil {
		return nil
	}
	var qErr *Error
	if errors.As(err, &qErr) {
		return qErr
	}
	// Wrap generic errors as internal errors
	return Wrap(err, InternalError, err.Error())
}
