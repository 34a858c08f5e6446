// Package apperr defines the service error taxonomy. Every user-visible
// failure carries a machine-readable kind plus a human-readable message;
// handlers map kinds to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status mapping and client payloads.
type Kind string

const (
	// KindConfiguration marks a missing or invalid service configuration,
	// e.g. an absent AI credential. Fatal per request, no partial work.
	KindConfiguration Kind = "configuration"

	// KindInvalidInput marks unusable client input, e.g. an unparseable
	// address or a video upload without a description.
	KindInvalidInput Kind = "invalid_input"

	// KindUpstream marks an AI provider request failure after retries and
	// model fallback were exhausted.
	KindUpstream Kind = "upstream"

	// KindPersistence marks a store read or write failure.
	KindPersistence Kind = "persistence"

	// KindNotFound marks a missing entity.
	KindNotFound Kind = "not_found"
)

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// report KindUpstream if nothing more specific is known.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf extracts the client-safe message from an error chain,
// falling back to the raw error text for unclassified errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// StatusCode maps an error to the HTTP status a handler should return.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindConfiguration, KindPersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
