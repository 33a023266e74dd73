package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenNotFound    = fmt.Errorf("no cached token")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrUnexpectedShape    = fmt.Errorf("unexpected response shape")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Data errors
	ErrParse      = fmt.Errorf("parse error")
	ErrValidation = fmt.Errorf("validation error")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// TransportError reports a remote call that failed before a usable response was received,
// either at the network level or with a non-2xx status.
type TransportError struct {
	Op     string // remote operation, e.g. "saved tracks"
	Status int    // HTTP status, 0 when the request never completed
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s: status %d", ErrAPIRequest, e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s: %v", ErrAPIRequest, e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return chain(ErrAPIRequest, e.Err) }

// RemoteError is the failure of a remote membership or mutation call.
type RemoteError = TransportError

// ShapeError reports a response that decoded but lacks a required field.
type ShapeError struct {
	Op    string
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: missing %q", ErrUnexpectedShape, e.Op, e.Field)
}

func (e *ShapeError) Unwrap() error { return ErrUnexpectedShape }

// ParseError reports a malformed or incomplete record.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %q: %v", ErrParse, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %s is missing", ErrParse, e.Field)
}

func (e *ParseError) Unwrap() []error { return chain(ErrParse, e.Err) }

// ValidationError reports a record whose field holds an unexpected value.
type ValidationError struct {
	Field string
	Want  string
	Got   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s is %q, want %q", ErrValidation, e.Field, e.Got, e.Want)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IsTransport reports whether err is (or wraps) a [TransportError].
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func chain(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}
