package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingprep/internal/config"
	"ratingprep/internal/exporter"
	"ratingprep/internal/infrastructure"
	"ratingprep/internal/operations"
	"ratingprep/internal/shared/testutil"
)

// writeConfig writes a YAML config rooted at a fresh temp dir
func writeConfig(t *testing.T, extra string) (configPath, outputDir string) {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir := t.TempDir()
	outputDir = filepath.Join(dir, "out")
	content := fmt.Sprintf(`logging:
  level: debug
  output: console
paths:
  output_dir: %s
  logs_dir: %s
%s`, outputDir, filepath.Join(dir, "logs"), extra)

	configPath = filepath.Join(dir, "ratingprep.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath, outputDir
}

func readManifest(t *testing.T, path string) *operations.RunManifest {
	t.Helper()
	manifest := &operations.RunManifest{}
	require.NoError(t, exporter.ReadJSON(path, manifest))
	return manifest
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "ratingprep v")
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: nil},
		{name: "unknown flag", args: []string{"-bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitUsage, run(context.Background(), tt.args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	configPath, _ := writeConfig(t, "report:\n  rating_bins: 0\n")
	input := testutil.WriteFile(t, "ratings.csv", testutil.RatingsCSV)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, input}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "RatingBins")
}

func TestRun_Success(t *testing.T) {
	configPath, outputDir := writeConfig(t, "")
	input := testutil.WriteFile(t, "ratings.csv", testutil.RatingsCSV)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, "-in", input}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	for _, name := range []string{
		config.CleanedCSVFile,
		config.SummaryJSONFile,
		config.ReportXLSXFile,
		config.ManifestJSONFile,
		config.DefaultMetricsFile,
	} {
		assert.FileExists(t, filepath.Join(outputDir, name))
	}

	metrics, err := os.ReadFile(filepath.Join(outputDir, config.DefaultMetricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "pipeline_")

	out := stdout.String()
	assert.Contains(t, out, string(operations.OperationStatusCompleted))
	assert.Contains(t, out, "wrote manifest")
}

func TestRun_MissingInput(t *testing.T) {
	configPath, outputDir := writeConfig(t, "")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, filepath.Join(t.TempDir(), "nope.csv")}, &stdout, &stderr)
	assert.Equal(t, exitFailure, code)

	manifest := readManifest(t, filepath.Join(outputDir, config.ManifestJSONFile))
	assert.Equal(t, operations.OperationStatusFailed, manifest.Status)
	assert.Equal(t, operations.StepIDLoad, manifest.FailedAt)
	assert.True(t, strings.Contains(stdout.String(), "skipped"))
}

func TestRun_DirectoryInput(t *testing.T) {
	configPath, outputDir := writeConfig(t, "report:\n  write_xlsx: false\n")
	input := testutil.WriteFile(t, "ratings.csv", testutil.RatingsCSV)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, filepath.Dir(input)}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	manifest := readManifest(t, filepath.Join(outputDir, config.ManifestJSONFile))
	assert.Equal(t, input, manifest.Input.Path)
	assert.NoFileExists(t, filepath.Join(outputDir, config.ReportXLSXFile))
}

func TestRun_LogFileInLogsDir(t *testing.T) {
	configPath, _ := writeConfig(t, "")
	t.Setenv("RATINGPREP_LOGGING_OUTPUT", "file")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, filepath.Join(t.TempDir(), "nope.csv")}, &stdout, &stderr)
	require.Equal(t, exitFailure, code)

	logFile := filepath.Join(filepath.Dir(configPath), "logs", config.DefaultLogFile)
	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	logs := string(content)
	assert.Contains(t, logs, `"msg":"Run failed"`)
	assert.Contains(t, logs, `"failed_step":"load"`)
	assert.Contains(t, logs, `"error":"`)
	assert.Contains(t, logs, `"trace_id":"`)
}
