// Package apperr defines the error taxonomy shared by all domain services.
// Every failure surfaced past a service boundary is one of these kinds so
// handlers can map it to a stable HTTP status and envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindValidation         Kind = "validation"
	KindInvalidTransition  Kind = "invalid_transition"
	KindConflict           Kind = "conflict"
	KindDependencyDegraded Kind = "dependency_degraded"
	KindInternal           Kind = "internal"
)

// Error is the typed error carried across the service boundary.
type Error struct {
	Kind    Kind
	Message string
	// From and To are set only for KindInvalidTransition so callers can
	// render the attempted hop.
	From string
	To   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// InvalidTransition reports a status hop not present in the transition table.
func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot move from %s to %s", from, to),
		From:    from,
		To:      to,
	}
}

// Conflict marks a lost optimistic-concurrency race. Services treat it as
// transient and retry a bounded number of times before surfacing it.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// DependencyDegraded wraps a non-fatal downstream failure (e.g. notification
// persistence). It is logged where it occurs and never fails the primary
// operation.
func DependencyDegraded(err error) *Error {
	return &Error{Kind: KindDependencyDegraded, Message: "dependency degraded", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the kind from any error, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to the HTTP status the envelope is sent with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
