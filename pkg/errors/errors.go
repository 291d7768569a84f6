package errors

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced to API clients.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeInternal           = "INTERNAL_ERROR"
)

var (
	// ErrVersionConflict is returned when a guarded write observes a stale
	// version token. The caller is expected to re-fetch and re-submit; the
	// write is never retried internally.
	ErrVersionConflict = errors.New("entity was modified concurrently")

	ErrInvalidInput = errors.New("invalid input data")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, err)
}

func Validation(message string, err error) *AppError {
	return NewAppError(CodeValidation, message, err)
}

func Conflict(message string) *AppError {
	return NewAppError(CodeConflict, message, ErrVersionConflict)
}

func Invariant(message string, err error) *AppError {
	return NewAppError(CodeInvariantViolation, message, err)
}

func Internal(err error) *AppError {
	return NewAppError(CodeInternal, "internal error", err)
}

// CodeOf extracts the application error code, defaulting to CodeInternal for
// errors that did not originate from this package.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
