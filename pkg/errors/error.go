// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown errors and cancellation
//   - Configuration errors (100-199): Rejected before a run starts
//   - Data errors (200-299): Malformed series or score inputs, detected at load
//   - Indicator errors (300-399): Indicator construction and lookup errors
//   - Strategy errors (400-499): Strategy selection and model score problems
//   - Execution policy violations (500-599): Orders that could not be filled
//   - Backtest errors (600-699): Orchestrator and results errors
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidWindow, "fast_window must be smaller than slow_window")
//
//	err := errors.NewDataError(errors.ErrCodeDuplicateTimestamp, 7, "duplicate timestamp")
//
//	if errors.IsCategory(err, errors.CategoryDataError) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error in the chain.
// Returns ErrCodeUnknown if no coded error is found.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var de *DataError
	if errors.As(err, &de) {
		return de.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsCategory reports whether err carries a code in the given category.
func IsCategory(err error, category Category) bool {
	if err == nil {
		return false
	}

	return GetCode(err).Category() == category
}

// DataError reports a malformed input row. Index is the zero-based
// position of the offending bar or score in its input.
type DataError struct {
	Code    ErrorCode
	Index   int
	Message string
}

// NewDataError creates a new DataError.
func NewDataError(code ErrorCode, index int, message string) *DataError {
	return &DataError{
		Code:    code,
		Index:   index,
		Message: message,
	}
}

// NewDataErrorf creates a new DataError with a formatted message.
func NewDataErrorf(code ErrorCode, index int, format string, args ...any) *DataError {
	return &DataError{
		Code:    code,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *DataError) Error() string {
	return fmt.Sprintf("[%d] data error at index %d: %s", e.Code, e.Index, e.Message)
}

// IsDataError checks if an error is a DataError.
func IsDataError(err error) bool {
	var dataErr *DataError

	return errors.As(err, &dataErr)
}

// DataErrorIndex returns the offending index of a DataError in the chain.
func DataErrorIndex(err error) (int, bool) {
	var dataErr *DataError
	if errors.As(err, &dataErr) {
		return dataErr.Index, true
	}

	return -1, false
}
