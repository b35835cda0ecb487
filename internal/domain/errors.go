package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindIncorrectPassword Kind = "incorrect_password"
	KindParseFailure      Kind = "parse_failure"
	KindUpstream          Kind = "upstream"
)

var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "Authorization token required"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrIncorrectPassword = &Error{Kind: KindIncorrectPassword, Message: "INCORRECT_PASSWORD"}

	// ErrInvalidTarget is returned for friend requests addressed to the sender.
	ErrInvalidTarget = &Error{Kind: KindValidation, Message: "You cannot send a friend request to yourself"}
	// ErrDuplicateRequest is returned when a pending or accepted relation already exists.
	ErrDuplicateRequest = &Error{Kind: KindValidation, Message: "Friend request already sent or already friends"}
)

// Error is a classified error carrying a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by identity. ErrUnauthorized, ErrNotFound and ErrIncorrectPassword
// also match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return isKindSentinel(t) && t.Kind == e.Kind
}

func isKindSentinel(e *Error) bool {
	return e == ErrUnauthorized || e == ErrNotFound || e == ErrIncorrectPassword
}

// Validation returns a validation error with the given message.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound returns a not-found error with the given message.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ParseFailure wraps an extraction failure.
func ParseFailure(message string, err error) error {
	return &Error{Kind: KindParseFailure, Message: message, Err: err}
}

// Upstream wraps a store or external-process failure.
func Upstream(message string, err error) error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are upstream failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUpstream
}

// MessageOf returns the client-facing message of a classified error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
