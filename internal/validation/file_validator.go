package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ratingprep/internal/errors"
)

// Input extensions the loader reads. Anything else is read as comma-delimited text.
var knownInputExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
	".xlsm": true,
}

// IsKnownInputExtension reports whether the loader has a dedicated reader for ext
func IsKnownInputExtension(ext string) bool {
	return knownInputExtensions[strings.ToLower(ext)]
}

// FileValidator provides the file checks run before and after a pipeline run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path names a readable regular file.
// Failures are SOURCE_NOT_FOUND errors.
func (v *FileValidator) ValidateInputFile(path string) error {
	if path == "" {
		return errors.NewSourceNotFoundError(path, fmt.Errorf("no input path given"))
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Input file not accessible",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewSourceNotFoundError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory, not a file",
			slog.String("path", path))
		return errors.NewSourceNotFoundError(path, fmt.Errorf("%s is a directory", path))
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Error("Input is an Excel lock file",
			slog.String("file", path))
		return errors.NewSourceNotFoundError(path, fmt.Errorf("%s is a temporary Excel file", base))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewSourceNotFoundError(path, err)
	}
	file.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if !knownInputExtensions[ext] {
		v.logger.Warn("Unrecognised input extension, reading as delimited text",
			slog.String("file", path),
			slog.String("extension", ext))
	}

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created and
// is writable. Failures are STORAGE errors.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	file, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(file.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
