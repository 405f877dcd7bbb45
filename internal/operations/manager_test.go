package operations_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingprep/internal/config"
	"ratingprep/internal/errors"
	"ratingprep/internal/exporter"
	"ratingprep/internal/infrastructure"
	"ratingprep/internal/operations"
	"ratingprep/internal/shared/testutil"
)

func newTestManager(t *testing.T, cfg *operations.Config, steps ...operations.Step) (*operations.Manager, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	registry := operations.NewRegistry()
	for _, s := range steps {
		require.NoError(t, registry.Register(s))
	}
	return operations.NewManager(logger, registry, cfg, nil), handler
}

func statuses(resp *operations.OperationResponse) []operations.StepStatus {
	out := make([]operations.StepStatus, len(resp.Steps))
	for i, s := range resp.Steps {
		out[i] = s.Status
	}
	return out
}

func TestManager_NoStepsRegistered(t *testing.T) {
	manager := operations.NewManager(nil, nil, nil, nil)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "empty"})

	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeFatal, operations.GetErrorType(err))
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Empty(t, resp.Steps)
	assert.NotNil(t, resp.Artifacts)
}

func TestManager_ExecuteSequential(t *testing.T) {
	var order []string
	record := func(id string) func(context.Context, *operations.OperationState) {
		return func(ctx context.Context, state *operations.OperationState) {
			order = append(order, id)
			assert.Equal(t, state.ID, infrastructure.GetRunID(ctx))
			// no recording tracer, so the run ID stands in for the trace ID
			assert.Equal(t, state.ID, infrastructure.GetTraceID(ctx))
		}
	}

	s1, s2, s3 := newMockStep("s1"), newMockStep("s2", "s1"), newMockStep("s3", "s2")
	s1.onExecute, s2.onExecute, s3.onExecute = record("s1"), record("s2"), record("s3")

	manager, handler := newTestManager(t, nil, s3, s1, s2)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-seq"})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3"}, order)
	assert.Equal(t, "run-seq", resp.ID)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.Equal(t, []operations.StepStatus{
		operations.StepStatusCompleted, operations.StepStatusCompleted, operations.StepStatusCompleted,
	}, statuses(resp))
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Artifacts)
	assert.NotNil(t, resp.Manifest)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Pipeline finished")
	testutil.AssertNoErrors(t, handler)

	var started *testutil.LogRecord
	for _, r := range handler.GetRecords() {
		if r.Message == "Pipeline started" {
			started = &r
		}
	}
	require.NotNil(t, started)
	assert.Equal(t, []string{"s3", "s1", "s2"}, started.Attrs["steps"], "registered steps in registration order")
}

func TestManager_GeneratesRunID(t *testing.T) {
	manager, _ := newTestManager(t, nil, newMockStep("only"))

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, resp.ID, resp.Manifest.RunID)
}

func TestManager_FailureSkipsRemainingSteps(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(s2 *mockStep)
		wantType operations.ErrorType
		wantIs   error
	}{
		{
			name: "execution error",
			setup: func(s2 *mockStep) {
				s2.execErr = errors.NewSchemaError("clean", fmt.Errorf("rating is string"))
			},
			wantType: operations.ErrorTypeExecution,
			wantIs:   errors.ErrSchema,
		},
		{
			name: "validation error",
			setup: func(s2 *mockStep) {
				s2.validateErr = fmt.Errorf("no table")
			},
			wantType: operations.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s1, s2, s3 := newMockStep("s1"), newMockStep("s2", "s1"), newMockStep("s3", "s2")
			tt.setup(s2)
			manager, handler := newTestManager(t, nil, s1, s2, s3)

			resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-fail"})
			require.Error(t, err)

			assert.Equal(t, tt.wantType, operations.GetErrorType(err))
			assert.Equal(t, "s2", operations.FailedStep(err))
			if tt.wantIs != nil {
				assert.True(t, stderrors.Is(err, tt.wantIs))
			}

			assert.Equal(t, operations.OperationStatusFailed, resp.Status)
			assert.Equal(t, []operations.StepStatus{
				operations.StepStatusCompleted, operations.StepStatusFailed, operations.StepStatusSkipped,
			}, statuses(resp))
			assert.Equal(t, "step s2 failed", resp.Steps[2].Message)
			assert.Zero(t, s3.calls)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, "s2", resp.Manifest.FailedAt)

			assert.True(t, handler.ContainsMessage("Step failed"))
			assert.True(t, handler.ContainsAttr("failed_step", "s2"))
		})
	}
}

func TestManager_CancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s1, s2, s3 := newMockStep("s1"), newMockStep("s2", "s1"), newMockStep("s3", "s2")
	s1.onExecute = func(context.Context, *operations.OperationState) { cancel() }
	manager, _ := newTestManager(t, nil, s1, s2, s3)

	resp, err := manager.Execute(ctx, operations.OperationRequest{ID: "run-cancel"})
	require.Error(t, err)

	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, operations.OperationStatusCancelled, resp.Status)
	assert.Equal(t, []operations.StepStatus{
		operations.StepStatusCompleted, operations.StepStatusSkipped, operations.StepStatusSkipped,
	}, statuses(resp))
	assert.Zero(t, s2.calls)
}

func TestManager_DependencyCycle(t *testing.T) {
	manager, _ := newTestManager(t, nil, newMockStep("a", "b"), newMockStep("b", "a"))

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-cycle"})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeFatal, operations.GetErrorType(err))
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Empty(t, resp.Steps)
}

func TestManager_ManifestWriteFailure(t *testing.T) {
	// a directory at the manifest path makes the final rename fail
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.Mkdir(manifestPath, 0755))

	cfg := operations.NewConfig()
	cfg.ManifestPath = manifestPath
	manager, _ := newTestManager(t, cfg, newMockStep("only"))

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-manifest"})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeFatal, operations.GetErrorType(err))
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Empty(t, resp.Artifacts)
}

func TestManager_EndToEnd(t *testing.T) {
	input := testutil.WriteFile(t, "ratings.csv", testutil.RatingsCSV)

	appCfg := config.Default()
	paths := config.NewPaths(t.TempDir(), appCfg)
	require.NoError(t, paths.EnsureDirectories())

	logger, handler := testutil.NewTestLogger(t)
	cfg := operations.ConfigFromApp(appCfg, paths)
	registry, err := operations.NewPipelineRegistry(logger, cfg)
	require.NoError(t, err)
	manager := operations.NewManager(logger, registry, cfg, operations.NewNoopOperationTracer())

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{InputPath: input})
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)

	rows := map[string][2]int{}
	for _, s := range resp.Steps {
		assert.Equal(t, operations.StepStatusCompleted, s.Status, s.ID)
		rows[s.ID] = [2]int{s.RowsIn, s.RowsOut}
	}
	assert.Equal(t, map[string][2]int{
		operations.StepIDLoad:      {4, 4},
		operations.StepIDClean:     {4, 1},
		operations.StepIDSelect:    {1, 1},
		operations.StepIDTransform: {1, 1},
		operations.StepIDReport:    {1, 1},
	}, rows)

	kinds := make([]exporter.ArtifactKind, len(resp.Artifacts))
	for i, a := range resp.Artifacts {
		kinds[i] = a.Kind
		info, err := os.Stat(a.Path)
		require.NoError(t, err, a.Path)
		assert.Equal(t, info.Size(), a.Bytes, a.Path)
	}
	assert.Equal(t, []exporter.ArtifactKind{
		exporter.ArtifactCleanedCSV,
		exporter.ArtifactReportXLSX,
		exporter.ArtifactSummaryJSON,
		exporter.ArtifactManifest,
	}, kinds)

	var manifest operations.RunManifest
	require.NoError(t, exporter.ReadJSON(paths.ManifestJSON, &manifest))
	assert.Equal(t, resp.ID, manifest.RunID)
	assert.Equal(t, operations.OperationStatusCompleted, manifest.Status)
	assert.Equal(t, int64(len(testutil.RatingsCSV)), manifest.Input.SizeBytes)
	assert.Len(t, manifest.Input.BLAKE2b, 64)
	require.NotNil(t, manifest.Cleaning)
	assert.Equal(t, 1, manifest.Cleaning.DroppedDuplicates)
	require.NotNil(t, manifest.Transform)
	assert.True(t, manifest.Transform.Degenerate)
	assert.Equal(t, resp.Artifacts[:3], manifest.Artifacts, "the manifest does not list itself")

	cleaned, err := os.ReadFile(paths.CleanedCSV)
	require.NoError(t, err)
	assert.Contains(t, string(cleaned), "1,10,3,1970-01-01 00:16:40,0")

	testutil.AssertNoErrors(t, handler)
}

func TestManager_EndToEnd_MissingInput(t *testing.T) {
	cfg := operations.NewConfig()
	registry, err := operations.NewPipelineRegistry(nil, cfg)
	require.NoError(t, err)
	logger, _ := testutil.NewTestLogger(t)
	manager := operations.NewManager(logger, registry, cfg, nil)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{
		InputPath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrSourceNotFound))
	assert.Equal(t, operations.StepIDLoad, operations.FailedStep(err))
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps[len(resp.Steps)-1].Status)
}
