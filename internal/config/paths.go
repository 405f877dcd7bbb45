package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths for one run.
// This is the single source of truth for every file the pipeline writes.
type Paths struct {
	BaseDir   string
	OutputDir string
	LogsDir   string
	LogFile   string

	// Well-known artifacts
	CleanedCSV   string
	SummaryJSON  string
	ReportXLSX   string
	ManifestJSON string
	MetricsFile  string
	TraceFile    string
}

// GetPaths resolves the configured locations against the working directory
func GetPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewPaths(wd, cfg), nil
}

// NewPaths resolves the configured locations against baseDir
func NewPaths(baseDir string, cfg *Config) *Paths {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	p := &Paths{
		BaseDir:   baseDir,
		OutputDir: resolve(cfg.Paths.OutputDir),
		LogsDir:   resolve(cfg.Paths.LogsDir),
	}

	artifact := func(name string) string {
		if name == "" {
			return ""
		}
		if filepath.IsAbs(name) {
			return name
		}
		return p.GetOutputPath(name)
	}

	p.CleanedCSV = artifact(CleanedCSVFile)
	p.SummaryJSON = artifact(SummaryJSONFile)
	p.ReportXLSX = artifact(ReportXLSXFile)
	p.ManifestJSON = artifact(ManifestJSONFile)
	p.MetricsFile = artifact(cfg.Telemetry.MetricsFile)
	p.TraceFile = artifact(cfg.Telemetry.TraceFile)

	p.LogFile = resolve(cfg.Logging.FilePath)
	if p.LogFile == "" {
		p.LogFile = p.GetLogPath(DefaultLogFile)
	}
	return p
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetOutputPath returns a path inside the output directory
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns a path inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
