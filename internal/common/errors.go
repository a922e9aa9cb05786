package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Extraction error taxonomy
var (
	// ErrStructuralMismatch: fewer tables/rows/cells than the layout expects. Recovered locally.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrEmptyDocument: zero pages or tables.
	ErrEmptyDocument = errors.New("empty document")
	// ErrUnreadableFile: the document cannot be opened or parsed.
	ErrUnreadableFile = errors.New("unreadable file")
	ErrInvalidInput   = errors.New("invalid input")
	ErrDatabase       = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Unreadable wraps err as ErrUnreadableFile while keeping the underlying cause reachable.
func Unreadable(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrUnreadableFile, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrUnreadableFile, msg, err)
}

// Mismatch describes a missing table/row/cell.
func Mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructuralMismatch, fmt.Sprintf(format, args...))
}
