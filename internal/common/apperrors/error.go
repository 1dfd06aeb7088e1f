// Package apperrors provides the error type used across the application.
// It implements the standard error interface while adding support for
// error chaining, status codes, and message customization, so call sites
// can classify failures with errors.Is while still carrying a
// human-readable cause.
package apperrors

// Error defines the interface for application errors. It extends the
// standard error interface with methods for deriving new errors from an
// existing one and for attaching the status code of a remote response.
// All derivation methods return Error to support method chaining.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetStatusCode(int) Error               // sets the HTTP status code carried by the error
	StatusCode() int                       // returns the current status code
	ErrorAll() string                      // returns full message including wrapped errors
}
