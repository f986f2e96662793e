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

	// Configuration errors
	ErrConfigLoad   ErrorCode = "CONFIG_LOAD"
	ErrConfigSyntax ErrorCode = "CONFIG_SYNTAX"

	// Build errors
	ErrAliasUnresolved ErrorCode = "ALIAS_UNRESOLVED"
	ErrPatternCompile  ErrorCode = "PATTERN_COMPILE"
	ErrProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"

	// Import errors
	ErrImportDisabled ErrorCode = "IMPORT_DISABLED"
	ErrImportAttr     ErrorCode = "IMPORT_ATTR"

	// Dispatch errors
	ErrNoMatch    ErrorCode = "NO_MATCH"
	ErrExecFailed ErrorCode = "EXEC_FAILED"
)

// RrrError represents a structured error with code and details
type RrrError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RrrError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RrrError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RrrError) Is(target error) bool {
	var targetErr *RrrError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RrrError with the given code and message
func New(code ErrorCode, message string) *RrrError {
	return &RrrError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RrrError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RrrError {
	return &RrrError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RrrError
func Wrap(err error, code ErrorCode, message string) *RrrError {
	if err == nil {
		return nil
	}
	return &RrrError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RrrError {
	if err == nil {
		return nil
	}
	return &RrrError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RrrError) WithDetail(key string, value interface{}) *RrrError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rrrErr *RrrError
	if errors.As(err, &rrrErr) {
		return rrrErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RrrError
func GetErrorCode(err error) ErrorCode {
	var rrrErr *RrrError
	if errors.As(err, &rrrErr) {
		return rrrErr.Code
	}
	return ErrUnknown
}
