package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSourceNotFound      ErrorType = "SOURCE_NOT_FOUND"
	ErrTypeSourceParse         ErrorType = "SOURCE_PARSE"
	ErrTypeSchema              ErrorType = "SCHEMA"
	ErrTypeImputationUndefined ErrorType = "IMPUTATION_UNDEFINED"
	ErrTypeTemporal            ErrorType = "TEMPORAL"
	ErrTypeConfig              ErrorType = "CONFIG"
	ErrTypeStorage             ErrorType = "STORAGE"
)

// Severity tells the pipeline whether an error stops the run
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityWarning Severity = "warning"
)

// Sentinel errors for errors.Is matching against AppError.Type
var (
	ErrSourceNotFound      = &AppError{Type: ErrTypeSourceNotFound}
	ErrSourceParse         = &AppError{Type: ErrTypeSourceParse}
	ErrSchema              = &AppError{Type: ErrTypeSchema}
	ErrImputationUndefined = &AppError{Type: ErrTypeImputationUndefined}
	ErrTemporal            = &AppError{Type: ErrTypeTemporal}
	ErrConfig              = &AppError{Type: ErrTypeConfig}
	ErrStorage             = &AppError{Type: ErrTypeStorage}
)

// AppError represents an application-specific error
type AppError struct {
	Type     ErrorType
	Severity Severity
	Message  string
	Cause    error
	Context  map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same type, so the sentinels above work with errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Fatal reports whether the error must stop the pipeline
func (e *AppError) Fatal() bool {
	return e.Severity != SeverityWarning
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new fatal application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:     errType,
		Severity: SeverityFatal,
		Message:  message,
		Cause:    cause,
		Context:  make(map[string]interface{}),
	}
}

// NewWarning creates a non-fatal diagnostic
func NewWarning(errType ErrorType, message string) *AppError {
	err := NewAppError(errType, message, nil)
	err.Severity = SeverityWarning
	return err
}

// Helper functions for common error types

// NewSourceNotFoundError creates an error for an input that cannot be located
func NewSourceNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeSourceNotFound, fmt.Sprintf("input %s not found", path), cause).
		WithContext("path", path)
}

// NewSourceParseError creates an error for an input that cannot be tokenized into a table
func NewSourceParseError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSourceParse, message, cause)
}

// NewSchemaError creates an error for a missing or mistyped required column
func NewSchemaError(stage string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("%s: required column check failed", stage), cause).
		WithContext("stage", stage)
}

// NewImputationUndefinedWarning reports a numeric column with no values to average
func NewImputationUndefinedWarning(column string, missing int) *AppError {
	return NewWarning(ErrTypeImputationUndefined,
		fmt.Sprintf("column %s has no non-missing values; %d gaps left unfilled", column, missing)).
		WithContext("column", column).
		WithContext("missing", missing)
}

// NewTemporalWarning reports one row whose epoch value cannot become a date-time
func NewTemporalWarning(column string, row int, raw int64) *AppError {
	return NewWarning(ErrTypeTemporal,
		fmt.Sprintf("column %s row %d: epoch value %d out of range", column, row, raw)).
		WithContext("column", column).
		WithContext("row", row).
		WithContext("value", raw)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewStorageError creates an output-writing error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
