package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Scan errors
	ErrClassifySkip ErrorCode = "CLASSIFY_SKIP"
	ErrIORead       ErrorCode = "IO_READ"
	ErrIOEnumerate  ErrorCode = "IO_ENUMERATE"

	// Remediation errors
	ErrRaceInvalidated   ErrorCode = "RACE_INVALIDATED"
	ErrMutationFailed    ErrorCode = "MUTATION_FAILED"
	ErrInvalidSelection  ErrorCode = "INVALID_SELECTION"
	ErrIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"
)

// DupesError represents a structured error with code and details
type DupesError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DupesError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DupesError) Unwrap() error {
	return e.Wrapped
}

// Is reports a match when target is a DupesError with the same code
func (e *DupesError) Is(target error) bool {
	var targetErr *DupesError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DupesError with the given code and message
func New(code ErrorCode, message string) *DupesError {
	return &DupesError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DupesError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DupesError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a DupesError
func Wrap(err error, code ErrorCode, message string) *DupesError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DupesError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *DupesError) WithDetail(key string, value interface{}) *DupesError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithPath records the offending filesystem path
func (e *DupesError) WithPath(path string) *DupesError {
	return e.WithDetail("path", path)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dupesErr *DupesError
	if errors.As(err, &dupesErr) {
		return dupesErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DupesError
func GetErrorCode(err error) ErrorCode {
	var dupesErr *DupesError
	if errors.As(err, &dupesErr) {
		return dupesErr.Code
	}
	return ErrUnknown
}

// GetErrorPath returns the path detail recorded on err, if any
func GetErrorPath(err error) string {
	var dupesErr *DupesError
	if errors.As(err, &dupesErr) {
		if p, ok := dupesErr.Details["path"].(string); ok {
			return p
		}
	}
	return ""
}

// GetErrorDetails returns the details from an error, or nil if not a DupesError
func GetErrorDetails(err error) map[string]interface{} {
	var dupesErr *DupesError
	if errors.As(err, &dupesErr) {
		return dupesErr.Details
	}
	return nil
}
