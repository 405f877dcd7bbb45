package table

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound is wrapped by SchemaError when a column name is absent
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnType is wrapped by SchemaError when a column has an unexpected kind
	ErrColumnType = errors.New("unexpected column type")

	// ErrDuplicateColumn is wrapped by SchemaError when a column name repeats
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrLengthMismatch is wrapped by SchemaError when columns disagree on row count
	ErrLengthMismatch = errors.New("column length mismatch")
)

// SchemaError reports a column-level contract violation
type SchemaError struct {
	Column string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema error on column %q: %v (%s)", e.Column, e.Err, e.Reason)
	}
	return fmt.Sprintf("schema error on column %q: %v", e.Column, e.Err)
}

// Unwrap allows errors.Is against the sentinel errors above
func (e *SchemaError) Unwrap() error {
	return e.Err
}

func missingColumn(name string) *SchemaError {
	return &SchemaError{Column: name, Err: ErrColumnNotFound}
}

func wrongKind(name string, got Kind, want string) *SchemaError {
	return &SchemaError{
		Column: name,
		Err:    ErrColumnType,
		Reason: fmt.Sprintf("got %s, want %s", got, want),
	}
}
