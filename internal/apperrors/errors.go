// Package apperrors provides the structured error type shared by the store,
// the sequence selector, the quiz service and the HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	// ErrorCodeDataIntegrity marks stored data that violates a model invariant
	ErrorCodeDataIntegrity ErrorCode = "DATA_INTEGRITY_ERROR"
	// ErrorCodeRecordNotFound indicates that a requested record was not found
	ErrorCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"
	// ErrorCodeDatabaseQuery indicates a database query error
	ErrorCodeDatabaseQuery ErrorCode = "DATABASE_QUERY_ERROR"
	// ErrorCodeInvalidInput indicates that the provided input is invalid
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorCodeUnauthorized indicates that the caller is not authenticated
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeAIRequestFailed indicates that the LLM provider call failed
	ErrorCodeAIRequestFailed ErrorCode = "AI_REQUEST_FAILED"
	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError ErrorCode = "INTERNAL_SERVER_ERROR"
)

// SeverityLevel represents the severity of an error for logging
type SeverityLevel string

const (
	SeverityInfo  SeverityLevel = "info"
	SeverityWarn  SeverityLevel = "warn"
	SeverityError SeverityLevel = "error"
)

// AppError represents a structured error with code, severity, and context
type AppError struct {
	Code     ErrorCode
	Severity SeverityLevel
	Message  string
	Details  string
	Cause    error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Code == appErr.Code
	}
	return false
}

var (
	ErrDataIntegrity = &AppError{
		Code:     ErrorCodeDataIntegrity,
		Severity: SeverityError,
		Message:  "Data integrity violation",
	}

	ErrRecordNotFound = &AppError{
		Code:     ErrorCodeRecordNotFound,
		Severity: SeverityInfo,
		Message:  "Record not found",
	}

	ErrDatabaseQuery = &AppError{
		Code:     ErrorCodeDatabaseQuery,
		Severity: SeverityError,
		Message:  "Database query failed",
	}

	ErrInvalidInput = &AppError{
		Code:     ErrorCodeInvalidInput,
		Severity: SeverityWarn,
		Message:  "Invalid input",
	}

	ErrUnauthorized = &AppError{
		Code:     ErrorCodeUnauthorized,
		Severity: SeverityWarn,
		Message:  "Unauthorized",
	}

	ErrAIRequestFailed = &AppError{
		Code:     ErrorCodeAIRequestFailed,
		Severity: SeverityError,
		Message:  "AI request failed",
	}

	ErrInternalError = &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  "Internal server error",
	}
)

// WrapError wraps an error with additional context, preserving AppError structure if possible
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:     appErr.Code,
			Severity: appErr.Severity,
			Message:  context,
			Details:  err.Error(),
			Cause:    err,
		}
	}

	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  context,
		Details:  err.Error(),
		Cause:    err,
	}
}

// WrapErrorf wraps an error with formatted context. A %w verb in format is
// honoured the same way fmt.Errorf does.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	var cause error = err
	var message string
	if strings.Contains(format, "%w") {
		cause = fmt.Errorf(format, args...)
		message = cause.Error()
	} else {
		message = fmt.Sprintf(format, args...)
	}

	code, severity := ErrorCodeInternalError, SeverityError
	var appErr *AppError
	if errors.As(err, &appErr) {
		code, severity = appErr.Code, appErr.Severity
	}

	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  err.Error(),
		Cause:    cause,
	}
}

// ErrorWithContextf creates a new error of the given kind with a formatted message.
func ErrorWithContextf(kind *AppError, format string, args ...interface{}) error {
	return &AppError{
		Code:     kind.Code,
		Severity: kind.Severity,
		Message:  fmt.Sprintf(format, args...),
		Cause:    kind,
	}
}

// GetErrorCode returns the code of the outermost AppError in err's chain.
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCodeInternalError
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch GetErrorCode(err) {
	case ErrorCodeInvalidInput:
		return http.StatusBadRequest
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeRecordNotFound:
		return http.StatusNotFound
	case ErrorCodeAIRequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
