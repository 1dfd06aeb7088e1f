package apperrors

import (
	"errors"
	"strings"
)

// appError is the concrete implementation of the Error interface.
type appError struct {
	msg        string  // primary error message
	base       error   // base error for errors.Is/As compatibility
	wrapped    []error // additional wrapped errors
	statuscode int     // HTTP status code, zero when not set
}

// New creates a root error with the given message. Root errors are intended
// to be declared as package-level sentinels that call sites derive from.
func New(msg string) Error {
	return &appError{msg: msg}
}

// Error returns the primary message.
func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the primary message followed by all wrapped errors.
func (e *appError) ErrorAll() string {
	if len(e.wrapped) == 0 {
		return e.msg
	}
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.wrapped {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the base error for compatibility with errors.Is / errors.As.
func (e *appError) Unwrap() error {
	return e.base
}

// Is reports whether any wrapped error matches target. The base chain is
// handled by Unwrap; this covers the extra errors attached via Err/MsgErr.
func (e *appError) Is(target error) bool {
	for _, w := range e.wrapped {
		if errors.Is(w, target) {
			return true
		}
	}
	return false
}

// New creates a fresh error using the current error as a template.
// The new error inherits the status code but starts with a new message.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

// Msg creates a new error with a new message that wraps the original.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    []error{e},
		statuscode: e.statuscode,
	}
}

// MsgErr creates a new error with a message and wraps additional errors.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    append([]error{e}, errs...),
		statuscode: e.statuscode,
	}
}

// Err creates a new error by attaching additional errors to the current one.
// The message and status code are retained.
func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		wrapped:    append([]error{e}, errs...),
		statuscode: e.statuscode,
	}
}

// SetStatusCode returns a derived error carrying the given status code.
// The original error remains unchanged and stays in the Unwrap chain.
func (e *appError) SetStatusCode(code int) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		wrapped:    e.wrapped,
		statuscode: code,
	}
}

// StatusCode returns the status code, or zero when none was set.
func (e *appError) StatusCode() int {
	return e.statuscode
}
