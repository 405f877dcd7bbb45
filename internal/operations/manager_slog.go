package operations

import (
	"context"
	"log/slog"
)

// logOperationStart logs the start of an operation execution
func (m *Manager) logOperationStart(ctx context.Context, req OperationRequest) {
	m.logger.InfoContext(ctx, "Pipeline started",
		slog.String("operation_id", req.ID),
		slog.String("input", req.InputPath),
		slog.Any("steps", m.registry.ListIDs()))
}

// logOperationComplete logs the final line of a run with its diagnostics
func (m *Manager) logOperationComplete(ctx context.Context, resp *OperationResponse) {
	level := slog.LevelInfo
	if resp.Status != OperationStatusCompleted {
		level = slog.LevelError
	}

	rowsOut := 0
	if n := len(resp.Steps); n > 0 {
		rowsOut = resp.Steps[n-1].RowsOut
	}

	m.logger.Log(ctx, level, "Pipeline finished",
		slog.String("operation_id", resp.ID),
		slog.String("status", string(resp.Status)),
		slog.Duration("duration", resp.Duration),
		slog.Int("rows_out", rowsOut),
		slog.Int("artifacts", len(resp.Artifacts)),
		slog.Any("diagnostics", resp.Diagnostics))
}

// logOperationError logs an operation error
func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "Pipeline error",
		slog.String("operation_id", operationID),
		slog.String("failed_step", FailedStep(err)),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", errorMsg))
}

// logStageStart logs the start of a step
func (m *Manager) logStageStart(ctx context.Context, operationID, stepID string) {
	m.logger.DebugContext(ctx, "Step started",
		slog.String("operation_id", operationID),
		slog.String("step", stepID))
}

// logStageComplete logs the completion of a step
func (m *Manager) logStageComplete(ctx context.Context, operationID string, summary StepSummary) {
	m.logger.InfoContext(ctx, "Step completed",
		slog.String("operation_id", operationID),
		slog.String("step", summary.ID),
		slog.Int("rows_in", summary.RowsIn),
		slog.Int("rows_out", summary.RowsOut),
		slog.Duration("duration", summary.Duration))
}

// logStageError logs a step error
func (m *Manager) logStageError(ctx context.Context, operationID, stepID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "Step failed",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("error", errorMsg))
}
