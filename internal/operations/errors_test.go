package operations_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"ratingprep/internal/errors"
	"ratingprep/internal/operations"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *operations.OperationError
		want string
	}{
		{
			name: "validation with cause",
			err:  operations.NewValidationError("clean", fmt.Errorf("no table")),
			want: "[validation] clean: step validation failed: no table",
		},
		{
			name: "fatal without step",
			err:  operations.NewFatalError("dependency cycle detected", nil),
			want: "[fatal] dependency cycle detected",
		},
		{
			name: "dependency",
			err:  operations.NewDependencyError("report", "transform", "dependency not completed"),
			want: "[dependency] report: dependency not completed",
		},
		{
			name: "nil",
			err:  nil,
			want: "unknown operation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, operations.WrapError(nil, "load"))

	cause := errors.NewSourceNotFoundError("missing.csv", nil)
	wrapped := operations.WrapError(cause, "load")
	assert.Equal(t, operations.ErrorTypeExecution, wrapped.Type)
	assert.Equal(t, "load", operations.FailedStep(wrapped))
	assert.True(t, stderrors.Is(wrapped, errors.ErrSourceNotFound))
	assert.False(t, stderrors.Is(wrapped, errors.ErrSchema))

	// an OperationError keeps its own type and step
	inner := operations.NewValidationError("clean", fmt.Errorf("no table"))
	assert.Same(t, inner, operations.WrapError(inner, "other"))
	assert.Equal(t, "clean", operations.FailedStep(inner))
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, operations.ErrorType(""), operations.GetErrorType(nil))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(fmt.Errorf("plain")))

	cancelled := operations.NewCancellationError("select", context.Canceled)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(fmt.Errorf("run: %w", cancelled)))
	assert.True(t, stderrors.Is(cancelled, context.Canceled))
	assert.Empty(t, operations.FailedStep(fmt.Errorf("plain")))
}
