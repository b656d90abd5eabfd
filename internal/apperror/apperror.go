// Package apperror defines the error kinds the service layer returns and the
// HTTP layer translates into status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrValidation       = errors.New("validation error")
	ErrTooLarge         = errors.New("payload too large")
	ErrUnavailable      = errors.New("service unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
)

// AppError carries a sentinel kind plus a message that is safe to show to
// the caller. Field names the offending input, if any.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func InvalidOperation(message string) *AppError {
	return &AppError{Err: ErrInvalidOperation, Message: message}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func TooLarge(message string) *AppError {
	return &AppError{Err: ErrTooLarge, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

// Unavailable wraps a datastore failure. The cause stays reachable through
// errors.Is/As but is never part of Message.
func Unavailable(cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrUnavailable, cause),
		Message: "datastore unavailable",
	}
}
