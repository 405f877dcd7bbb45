package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"ratingprep/internal/infrastructure"
)

const (
	TracerName = "ratingprep.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer over the given providers. Nil providers
// give a tracer that records nothing.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	if providers == nil {
		return NewNoopOperationTracer(), nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &OperationTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// NewNoopOperationTracer returns a tracer that records nothing
func NewNoopOperationTracer() *OperationTracer {
	return &OperationTracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, runID, inputPath string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", runID),
			attribute.String("operation.input", inputPath),
		),
	)
}

// TraceStepExecution creates a span for one step
func (pt *OperationTracer) TraceStepExecution(ctx context.Context, runID string, step Step) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", runID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStepCompletion records step metrics and closes out the step span. ctx
// must carry span.
func (pt *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, rowsIn, rowsOut int, err error) {
	success := err == nil

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"step.duration_seconds": duration.Seconds(),
		"step.rows_in":          rowsIn,
		"step.rows_out":         rowsOut,
	})

	infrastructure.RecordStepMetrics(ctx, pt.metrics, stepID, duration, success)
	if success {
		infrastructure.RecordRows(ctx, pt.metrics, stepID, rowsIn, rowsOut)
		infrastructure.AddSpanEvent(ctx, "step.completed", map[string]interface{}{
			"step_id":  stepID,
			"rows_in":  rowsIn,
			"rows_out": rowsOut,
		})
		span.SetStatus(codes.Ok, "step completed")
		return
	}

	infrastructure.RecordError(ctx, err,
		trace.WithAttributes(
			attribute.String("step_id", stepID),
			attribute.String("error.type", "step_execution_error"),
		),
	)
	span.SetStatus(codes.Error, err.Error())
}

// RecordOperationCompletion records run metrics and closes out the run span
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, state *OperationState, artifacts []string) {
	duration := state.Duration()
	success := state.GetStatus() == OperationStatusCompleted
	diagnostics := state.DiagnosticCounts()

	span.SetAttributes(
		attribute.String("operation.status", string(state.GetStatus())),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
		attribute.Int("operation.diagnostics", state.Diagnostics.Len()),
	)

	infrastructure.RecordRunMetrics(ctx, pt.metrics, duration, success)
	infrastructure.RecordDiagnostics(ctx, pt.metrics, diagnostics)
	for _, kind := range artifacts {
		infrastructure.RecordArtifact(ctx, pt.metrics, kind)
	}

	if success {
		span.SetStatus(codes.Ok, "operation completed")
		return
	}
	if state.Error != nil {
		infrastructure.RecordError(ctx, state.Error,
			trace.WithAttributes(attribute.String("error.type", "operation_execution_error")))
	}
	span.SetStatus(codes.Error, fmt.Sprintf("operation finished with status %s", state.GetStatus()))
}
