package operations_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingprep/internal/errors"
	"ratingprep/internal/operations"
)

func TestStepState_Lifecycle(t *testing.T) {
	s := operations.NewStepState("clean", "Clean Ratings")
	assert.Equal(t, operations.StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, operations.StepStatusActive, s.GetStatus())

	s.SetRows(4, 1)
	s.Complete()
	assert.Equal(t, operations.StepStatusCompleted, s.GetStatus())

	summary := s.Summary()
	assert.Equal(t, "clean", summary.ID)
	assert.Equal(t, "Clean Ratings", summary.Name)
	assert.Equal(t, 4, summary.RowsIn)
	assert.Equal(t, 1, summary.RowsOut)
	assert.GreaterOrEqual(t, summary.Duration.Nanoseconds(), int64(0))
}

func TestStepState_FailAndSkip(t *testing.T) {
	failed := operations.NewStepState("load", "Load Input")
	failed.Start()
	failed.Fail(fmt.Errorf("boom"))
	assert.Equal(t, operations.StepStatusFailed, failed.GetStatus())
	assert.Equal(t, "boom", failed.Summary().Message)

	skipped := operations.NewStepState("report", "Report")
	skipped.Skip("step load failed")
	assert.Equal(t, operations.StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "step load failed", skipped.Summary().Message)
	assert.Zero(t, skipped.Duration())
}

func TestOperationState(t *testing.T) {
	state := operations.NewOperationState("run-1", "ratings.csv")
	assert.Equal(t, operations.OperationStatusPending, state.GetStatus())

	for _, id := range []string{"load", "clean", "select"} {
		state.SetStage(id, operations.NewStepState(id, id))
	}
	// replacing a step keeps its position
	state.SetStage("load", operations.NewStepState("load", "Load Input"))

	ordered := state.OrderedStages()
	require.Len(t, ordered, 3)
	assert.Equal(t, "load", ordered[0].ID)
	assert.Equal(t, "Load Input", ordered[0].Name)
	assert.Equal(t, "select", ordered[2].ID)

	state.Start()
	assert.Equal(t, operations.OperationStatusRunning, state.GetStatus())

	state.GetStage("load").Complete()
	state.GetStage("clean").Fail(fmt.Errorf("schema"))
	state.GetStage("select").Skip("step clean failed")

	assert.Equal(t, operations.StepStatusCompleted, ordered[0].GetStatus())
	assert.Equal(t, operations.StepStatusFailed, state.GetStage("clean").GetStatus())
	assert.Equal(t, operations.StepStatusSkipped, ordered[2].GetStatus())

	state.SetContext("key", 42)
	v, ok := state.GetContext("key")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	_, ok = state.GetContext("missing")
	assert.False(t, ok)

	state.Fail(fmt.Errorf("clean failed"))
	assert.Equal(t, operations.OperationStatusFailed, state.GetStatus())
	assert.NotNil(t, state.EndTime)
}

func TestOperationState_DiagnosticCounts(t *testing.T) {
	state := operations.NewOperationState("run-1", "")
	state.Diagnostics.Add(
		errors.NewTemporalWarning("timestamp", 1, 1<<62),
		errors.NewTemporalWarning("timestamp", 2, 1<<62),
		errors.NewImputationUndefinedWarning("rating", 3),
	)

	assert.Equal(t, map[string]int{
		string(errors.ErrTypeTemporal):            2,
		string(errors.ErrTypeImputationUndefined): 1,
	}, state.DiagnosticCounts())
}
