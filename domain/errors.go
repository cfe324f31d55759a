package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInvalid            ErrorCode = "INVALID"
	ErrCodeEmailExists        ErrorCode = "EMAIL_EXISTS"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidSession     ErrorCode = "INVALID_SESSION"
	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeUnavailable        ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL"
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

// Unavailable classifies a collaborator failure without leaking its detail to clients.
func Unavailable(message string, err error) *Error {
	return WrapError(ErrCodeUnavailable, message, err)
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrSessionInvalid     = NewError(ErrCodeUnauthenticated, "session is invalid or expired")
	ErrEmailExists        = NewError(ErrCodeEmailExists, "email already registered")
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "invalid email or password")
	ErrInvalidSession     = NewError(ErrCodeInvalidSession, "invalid session")
	ErrMissingCredential  = NewError(ErrCodeUnauthenticated, "missing or malformed credential")
	ErrInvalidToken       = NewError(ErrCodeUnauthenticated, "invalid or expired session")
	ErrForbidden          = NewError(ErrCodeForbidden, "access to resource denied")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the classification of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
