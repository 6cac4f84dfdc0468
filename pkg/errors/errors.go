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
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors, all fatal before any build work starts
	ErrConfigLoad       ErrorCode = "CONFIG_LOAD"
	ErrConfigParse      ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrPatternInvalid   ErrorCode = "PATTERN_INVALID"
	ErrUnknownTransform ErrorCode = "UNKNOWN_TRANSFORM"
	ErrUnknownPlugin    ErrorCode = "UNKNOWN_PLUGIN"
	ErrTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"

	// Build errors, fatal for the file being processed
	ErrNoMatch   ErrorCode = "NO_MATCH"
	ErrResolve   ErrorCode = "RESOLVE"
	ErrTransform ErrorCode = "TRANSFORM"

	// FileSystem errors
	ErrFileRead  ErrorCode = "FILE_READ"
	ErrFileWrite ErrorCode = "FILE_WRITE"
)

// WebrigError represents a structured error with code and details
type WebrigError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *WebrigError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *WebrigError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a WebrigError with the same code
func (e *WebrigError) Is(target error) bool {
	var targetErr *WebrigError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new WebrigError with the given code and message
func New(code ErrorCode, message string) *WebrigError {
	return &WebrigError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new WebrigError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *WebrigError {
	return &WebrigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a WebrigError
func Wrap(err error, code ErrorCode, message string) *WebrigError {
	if err == nil {
		return nil
	}
	return &WebrigError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *WebrigError {
	if err == nil {
		return nil
	}
	return &WebrigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *WebrigError) WithDetail(key string, value interface{}) *WebrigError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error, or any error it wraps, has a specific code
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var werr *WebrigError
		if !errors.As(err, &werr) {
			return false
		}
		if werr.Code == code {
			return true
		}
		err = werr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if err is not a WebrigError
func GetErrorCode(err error) ErrorCode {
	var werr *WebrigError
	if errors.As(err, &werr) {
		return werr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a WebrigError
func GetErrorDetails(err error) map[string]interface{} {
	var werr *WebrigError
	if errors.As(err, &werr) {
		return werr.Details
	}
	return nil
}
