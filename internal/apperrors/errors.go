// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how it should be reported to the client
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUpstream
	KindTooManyRequests
)

// String returns the taxonomy name of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "Conflict"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindUpstream:
		return "UpstreamFailure"
	case KindTooManyRequests:
		return "TooManyRequests"
	default:
		return "InternalError"
	}
}

// Status returns the HTTP status code reported for the kind
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients,
// Fields holds per-field details and Err the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithField adds a field detail and returns the error
func (e *Error) WithField(field, detail string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = detail
	return e
}

// Validation reports missing or malformed input
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict reports a uniqueness violation
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Unauthenticated reports missing or invalid credentials
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Forbidden reports insufficient permissions
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound reports a missing resource
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Upstream reports a failed collaborator call (email, file storage)
func Upstream(err error, message string) *Error {
	return Wrap(err, KindUpstream, message)
}

// Internal reports an unexpected fault
func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, message)
}

// As returns the first *Error in the chain of err
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err; unclassified errors are internal
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
