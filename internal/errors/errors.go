package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// ConfigInvalid creates a configuration error
func ConfigInvalid(message string) *AppError {
	return New("CONFIG_INVALID", message)
}

// NotFound creates a lookup error for a missing table row or file
func NotFound(format string, args ...interface{}) *AppError {
	return New("NOT_FOUND", fmt.Sprintf(format, args...))
}

// InvalidInput creates a validation error for bad user input
func InvalidInput(format string, args ...interface{}) *AppError {
	return New("INVALID_INPUT", fmt.Sprintf(format, args...))
}

// FormatInvalid creates an error for a malformed data file
func FormatInvalid(format string, args ...interface{}) *AppError {
	return New("FORMAT_INVALID", fmt.Sprintf(format, args...))
}
