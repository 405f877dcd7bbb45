package operations_test

import (
	"context"

	"ratingprep/internal/operations"
)

// mockStep is a configurable Step for manager and registry tests
type mockStep struct {
	operations.BaseStage
	validateErr error
	execErr     error
	onExecute   func(ctx context.Context, state *operations.OperationState)
	calls       int
}

func newMockStep(id string, deps ...string) *mockStep {
	return &mockStep{BaseStage: operations.NewBaseStage(id, "Step "+id, deps)}
}

func (s *mockStep) Validate(*operations.OperationState) error {
	return s.validateErr
}

func (s *mockStep) Execute(ctx context.Context, state *operations.OperationState) error {
	s.calls++
	if s.onExecute != nil {
		s.onExecute(ctx, state)
	}
	return s.execErr
}

func stepIDs(steps []operations.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}
