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

	// Package list errors
	ErrPackageListNotFound ErrorCode = "PACKAGE_LIST_NOT_FOUND"
	ErrPackageListParse    ErrorCode = "PACKAGE_LIST_PARSE"

	// Settings errors
	ErrSettingsLoad  ErrorCode = "SETTINGS_LOAD"
	ErrSettingsValid ErrorCode = "SETTINGS_INVALID"

	// Snapshot errors
	ErrSnapshotQuery ErrorCode = "SNAPSHOT_QUERY"

	// Conflict resolver errors
	ErrConflictKill ErrorCode = "CONFLICT_KILL"

	// Execution errors
	ErrExecLaunch  ErrorCode = "EXEC_LAUNCH"
	ErrExecTimeout ErrorCode = "EXEC_TIMEOUT"
	ErrExecFailed  ErrorCode = "EXEC_FAILED"

	// Run-level errors
	ErrRunIncomplete ErrorCode = "RUN_INCOMPLETE"
)

// PkgsyncError represents a structured error with code and details
type PkgsyncError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PkgsyncError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PkgsyncError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PkgsyncError) Is(target error) bool {
	var targetErr *PkgsyncError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PkgsyncError with the given code and message
func New(code ErrorCode, message string) *PkgsyncError {
	return &PkgsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PkgsyncError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PkgsyncError {
	return &PkgsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PkgsyncError
func Wrap(err error, code ErrorCode, message string) *PkgsyncError {
	if err == nil {
		return nil
	}
	return &PkgsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PkgsyncError {
	if err == nil {
		return nil
	}
	return &PkgsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PkgsyncError) WithDetail(key string, value interface{}) *PkgsyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *PkgsyncError) WithDetails(details map[string]interface{}) *PkgsyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var perr *PkgsyncError
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PkgsyncError
func GetErrorCode(err error) ErrorCode {
	var perr *PkgsyncError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PkgsyncError
func GetErrorDetails(err error) map[string]interface{} {
	var perr *PkgsyncError
	if errors.As(err, &perr) {
		return perr.Details
	}
	return nil
}
