package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()

	t.Run("relative locations resolve against base", func(t *testing.T) {
		paths := NewPaths(base, Default())

		assert.Equal(t, filepath.Join(base, "output"), paths.OutputDir)
		assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
		assert.Equal(t, filepath.Join(base, "output", CleanedCSVFile), paths.CleanedCSV)
		assert.Equal(t, filepath.Join(base, "output", SummaryJSONFile), paths.SummaryJSON)
		assert.Equal(t, filepath.Join(base, "output", ReportXLSXFile), paths.ReportXLSX)
		assert.Equal(t, filepath.Join(base, "output", ManifestJSONFile), paths.ManifestJSON)
		assert.Equal(t, filepath.Join(base, "output", DefaultMetricsFile), paths.MetricsFile)
		assert.Empty(t, paths.TraceFile, "no trace file unless configured")
	})

	t.Run("absolute locations are kept", func(t *testing.T) {
		cfg := Default()
		abs := filepath.Join(t.TempDir(), "elsewhere")
		cfg.Paths.OutputDir = abs
		cfg.Telemetry.TraceFile = filepath.Join(abs, "traces.jsonl")

		paths := NewPaths(base, cfg)

		assert.Equal(t, abs, paths.OutputDir)
		assert.Equal(t, filepath.Join(abs, "traces.jsonl"), paths.TraceFile)
	})

	t.Run("disabled metrics file", func(t *testing.T) {
		cfg := Default()
		cfg.Telemetry.MetricsFile = ""

		assert.Empty(t, NewPaths(base, cfg).MetricsFile)
	})
}

func TestGetPaths(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	paths, err := GetPaths(Default())

	require.NoError(t, err)
	wd, _ := os.Getwd()
	assert.Equal(t, wd, paths.BaseDir)
	assert.True(t, filepath.IsAbs(paths.OutputDir))
}

func TestEnsureDirectories(t *testing.T) {
	paths := NewPaths(t.TempDir(), Default())

	require.NoError(t, paths.EnsureDirectories())
	// Idempotent
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.OutputDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	t.Run("blocked by a file", func(t *testing.T) {
		base := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(base, "output"), []byte("x"), 0644))

		err := NewPaths(base, Default()).EnsureDirectories()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create directory")
	})
}

func TestNewPaths_LogFile(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		want     func(p *Paths) string
	}{
		{
			name: "defaults into the logs directory",
			want: func(p *Paths) string { return p.GetLogPath(DefaultLogFile) },
		},
		{
			name:     "relative path resolves against base",
			filePath: filepath.Join("var", "run.log"),
			want:     func(p *Paths) string { return filepath.Join(p.BaseDir, "var", "run.log") },
		},
		{
			name:     "absolute path is kept",
			filePath: "/tmp/ratingprep.log",
			want:     func(*Paths) string { return "/tmp/ratingprep.log" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.FilePath = tt.filePath

			paths := NewPaths("/base", cfg)

			assert.Equal(t, tt.want(paths), paths.LogFile)
		})
	}

	paths := NewPaths("/base", Default())
	assert.Equal(t, filepath.Join("/base", "logs", DefaultLogFile), paths.LogFile)
	assert.Equal(t, paths.GetOutputPath(CleanedCSVFile), paths.CleanedCSV)
}

func TestFileExists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "present.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(file+".missing"))
}
