package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

// Kind classifies a service failure. Each transport maps kinds to its own
// status codes or error codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidInput
	KindUnauthenticated
	KindForbidden
	KindQuotaExceeded
	KindNotFound
	KindRateLimited
	KindConflict
	KindDataAccess
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindConflict:
		return "conflict"
	case KindDataAccess:
		return "data_access"
	default:
		return "internal"
	}
}

// Error is the tagged result of a failed operation. Message is safe to show
// to the caller; Err holds the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Fields  validation.Errors
	ResetAt time.Time
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if se, ok := AsError(err); ok {
		return se.Kind
	}
	return KindInternal
}

const (
	msgUnauthenticated = "Authentication required."
	msgNotFound        = "Todo not found."
	msgInvalidJSON     = "Request body must be valid JSON."
	msgInvalidInput    = "Invalid input."
	msgQuota           = "Maximum 100 todos per user."
	msgAdminOnly       = "Admin access required."
	msgTooMany         = "Too many requests."
	msgTooManyLogins   = "Too many login attempts. Please try again in 15 minutes."
	msgEmailTaken      = "Email already exists."
	msgAutoLoginFailed = "Registration successful but auto-login failed. Please log in manually."
)

func errUnauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: msgUnauthenticated}
}

func errForbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func errNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: msgNotFound}
}

func errValidation(fields validation.Errors) *Error {
	return &Error{Kind: KindValidation, Message: msgInvalidInput, Fields: fields}
}

func errRateLimited(msg string, resetAt time.Time) *Error {
	return &Error{Kind: KindRateLimited, Message: msg, ResetAt: resetAt}
}

// errDataAccess hides the storage failure behind a generic message.
func errDataAccess(op string, err error) *Error {
	return &Error{Kind: KindDataAccess, Message: "Database Error: Failed to " + op + ".", Err: err}
}

// inputError classifies a payload decode failure.
func inputError(err error) *Error {
	if fields, ok := validation.AsErrors(err); ok {
		return errValidation(fields)
	}
	if se, ok := AsError(err); ok {
		return se
	}
	return &Error{Kind: KindInvalidInput, Message: msgInvalidJSON, Err: err}
}
