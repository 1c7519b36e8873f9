package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeCorrupt      ErrorCode = "CORRUPT"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrAccountNotFound    = NewError(ErrCodeNotFound, "account not found")
	ErrCorruptSession     = NewError(ErrCodeCorrupt, "persisted session is corrupt")
	ErrMissingCredentials = NewError(ErrCodeInvalid, "email and password are required")
	ErrReservedIdentity   = NewError(ErrCodeInvalid, "this email cannot be used")
	ErrUnknownProvider    = NewError(ErrCodeInvalid, "unsupported login provider")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "login failed, check your email and password")
	ErrEmailTaken         = NewError(ErrCodeConflict, "email already registered")
	ErrSuperseded         = NewError(ErrCodeConflict, "a newer login replaced this attempt")
	ErrManagerClosed      = NewError(ErrCodeConflict, "session manager is shut down")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
