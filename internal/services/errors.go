// Package services contains the domain logic of the PlayMate API: one service per entity
// group (players, turfs and bookings, connections, events, chat, admin).
//
// Services never touch HTTP. Every operation either returns a value or fails with a
// *Error whose Kind tells the HTTP layer which status code to send.
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a service failure. Each kind maps to exactly one HTTP status.
type Kind int

const (
	KindInternal     Kind = iota // 500; message hidden from clients
	KindValidation               // 400
	KindUnauthorized             // 401
	KindForbidden                // 403
	KindNotFound                 // 404
	KindConflict                 // 409
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the single error type returned by services.
// Detail optionally carries a value the client should see alongside the message,
// such as the existing connection on a duplicate connect request.
type Error struct {
	Kind    Kind
	Message string
	Detail  any
	Err     error // underlying cause, only logged
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// internal wraps an unexpected store or library failure. op names the operation for the logs.
func internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of err, treating anything that is not a *Error as internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// isNotFound reports whether a GORM First/Take call found no row.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isUniqueViolation recognises a unique-constraint failure. GORM translates it to
// ErrDuplicatedKey when TranslateError is on; the message checks cover drivers that
// don't implement translation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
