package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ratingprep/internal/exporter"
	"ratingprep/internal/infrastructure"
)

// Manager orchestrates one pipeline run at a time
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager. Nil arguments fall back to an
// empty registry, the default config and a tracer that records nothing.
func NewManager(logger *slog.Logger, registry *Registry, config *Config, tracer *OperationTracer) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewNoopOperationTracer()
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "operations"),
	}
}

// Execute runs every registered step in dependency order. The first failing
// step stops the run; the steps after it are marked skipped. The returned
// response is never nil, and err unwraps to the failing step's cause.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		ctx, req.ID = infrastructure.EnsureRunID(ctx)
	} else {
		ctx = infrastructure.WithRunID(ctx, req.ID)
	}

	state := NewOperationState(req.ID, req.InputPath)
	manifest := NewRunManifest(req.ID, req.InputPath)

	steps, err := m.registry.GetDependencyOrder()
	if err == nil && m.registry.Count() == 0 {
		err = NewFatalError("no steps registered", nil)
	}
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		manifest.Finish(state)
		return m.createResponse(state, manifest, nil), err
	}
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	if digest, size, derr := DigestFile(req.InputPath); derr == nil {
		manifest.RecordInputDigest(digest, size)
	} else {
		m.logger.DebugContext(ctx, "Input digest unavailable",
			slog.String("input", req.InputPath),
			slog.String("error", derr.Error()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, req.InputPath)
	defer span.End()
	// Without a recording tracer the run ID correlates log lines instead
	if infrastructure.GetTraceID(ctx) == "" {
		ctx = infrastructure.WithTraceID(ctx, req.ID)
	}

	m.logOperationStart(ctx, req)
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	manifest.Finish(state)
	artifacts := artifactsFromState(state)
	for _, a := range artifacts {
		manifest.AddArtifact(a)
	}

	if m.config.ManifestPath != "" {
		artifact, serr := m.saveManifest(manifest)
		if serr != nil {
			m.logOperationError(ctx, req.ID, serr)
			if err == nil {
				err = serr
				state.Fail(err)
			}
		} else {
			artifacts = append(artifacts, artifact)
		}
	}

	kinds := make([]string, len(artifacts))
	for i, a := range artifacts {
		kinds[i] = string(a.Kind)
	}
	m.tracer.RecordOperationCompletion(ctx, span, state, kinds)

	resp := m.createResponse(state, manifest, artifacts)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, resp)

	return resp, err
}

// executeSequential runs steps one by one. Cancellation is observed between steps.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if cerr := ctx.Err(); cerr != nil {
			m.logger.WarnContext(ctx, "Operation cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), cerr)
		}

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs a single step
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found for "+step.ID(), nil)
	}

	for _, dep := range step.GetDependencies() {
		if depState := state.GetStage(dep); depState == nil || depState.GetStatus() != StepStatusCompleted {
			err := NewDependencyError(step.ID(), dep, "dependency not completed")
			stepState.Fail(err)
			return err
		}
	}

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err)
		stepState.Fail(verr)
		m.logStageError(ctx, state.ID, step.ID(), verr)
		return verr
	}

	stepCtx, span := m.tracer.TraceStepExecution(ctx, state.ID, step)
	defer span.End()

	m.logStageStart(stepCtx, state.ID, step.ID())
	stepState.Start()

	err := step.Execute(stepCtx, state)
	if err != nil {
		stepState.Fail(err)
	} else {
		stepState.Complete()
	}

	summary := stepState.Summary()
	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), summary.Duration, summary.RowsIn, summary.RowsOut, err)

	if err != nil {
		m.logStageError(stepCtx, state.ID, step.ID(), err)
		return WrapError(err, step.ID())
	}
	m.logStageComplete(stepCtx, state.ID, summary)
	return nil
}

// skipRemaining marks every still-pending step as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// saveManifest writes the manifest and describes the file it produced
func (m *Manager) saveManifest(manifest *RunManifest) (exporter.Artifact, error) {
	path := m.config.ManifestPath
	if err := manifest.SaveToFile(path); err != nil {
		return exporter.Artifact{}, NewFatalError("failed to write run manifest", err)
	}

	artifact := exporter.Artifact{Kind: exporter.ArtifactManifest, Path: path}
	if info, err := os.Stat(path); err == nil {
		artifact.Bytes = info.Size()
	}
	return artifact, nil
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState, manifest *RunManifest, artifacts []exporter.Artifact) *OperationResponse {
	resp := &OperationResponse{
		ID:          state.ID,
		Status:      state.GetStatus(),
		Duration:    state.Duration(),
		Steps:       make([]StepSummary, 0, len(state.Steps)),
		Diagnostics: state.DiagnosticCounts(),
		Artifacts:   artifacts,
		Manifest:    manifest,
	}
	if resp.Artifacts == nil {
		resp.Artifacts = []exporter.Artifact{}
	}

	for _, step := range state.OrderedStages() {
		resp.Steps = append(resp.Steps, step.Summary())
	}

	if state.Error != nil {
		resp.Error = state.Error.Error()
	}

	return resp
}

func artifactsFromState(state *OperationState) []exporter.Artifact {
	v, ok := state.GetContext(ContextKeyArtifacts)
	if !ok {
		return nil
	}
	artifacts, _ := v.([]exporter.Artifact)
	return append([]exporter.Artifact(nil), artifacts...)
}
