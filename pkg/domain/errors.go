package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the typed failures returned by catalog operations.
type ErrorKind string

const (
	// KindNotFound indicates the referenced resource id does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindAlreadyExists is reserved; no current operation produces it.
	KindAlreadyExists ErrorKind = "already_exists"
	// KindInvalidInput indicates a title/description/category constraint failure.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindUnauthorized indicates the caller lacks the required privilege.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindInternal covers unexpected host-level failures such as snapshot corruption.
	KindInternal ErrorKind = "internal_error"
)

// Error is the typed error value returned to callers.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of reason.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Sentinel values for errors.Is comparisons.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrInternal      = &Error{Kind: KindInternal}
)

// NotFound builds a not-found error for a resource id.
func NotFound(id uint64) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf("resource %d not found", id)}
}

// InvalidInput builds an invalid-input error with a human readable reason.
func InvalidInput(reason string) error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

// Unauthorized builds an authorization failure.
func Unauthorized(reason string) error {
	return &Error{Kind: KindUnauthorized, Reason: reason}
}

// Internal wraps an unexpected failure.
func Internal(reason string, err error) error {
	return &Error{Kind: KindInternal, Reason: reason, Err: err}
}

// KindOf returns the kind of a catalog error, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
