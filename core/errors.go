package core

import "github.com/pkg/errors"

// FieldError attaches a message to the struct field that caused it. The API
// error handler renders a slice of these as a {field: message} JSON object.
type FieldError struct {
	Field string
	Error string
}

// ValidationError wraps invalid request or CLI input. Err carries the
// overall message; Fields carries per-field details when they exist.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// shutdown flags an integrity issue the API server cannot recover from;
// the error handler trips a graceful shutdown when it sees one.
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
