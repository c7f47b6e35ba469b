package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies business-rule failures
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindStateConflict Kind = "state_conflict"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal"
)

// Sentinels for errors.Is checks against a kind
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrStateConflict = &Error{Kind: KindStateConflict}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

// Error is an expected failure surfaced to the caller as a message
type Error struct {
	Kind    Kind              `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation creates a validation error with optional field messages
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func StateConflict(message string) *Error {
	return &Error{Kind: KindStateConflict, Message: message}
}

// NotFound creates a not-found error for the named entity
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", entity)}
}

// As extracts an *Error from a wrapped chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, internal for anything unexpected
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status a handler should answer with
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindStateConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
