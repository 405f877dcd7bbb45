package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingprep/internal/errors"
	"ratingprep/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ratings.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testutil.RatingsCSV), 0644))
	datPath := filepath.Join(dir, "ratings.dat")
	require.NoError(t, os.WriteFile(datPath, []byte(testutil.RatingsCSV), 0644))
	lockPath := filepath.Join(dir, "~$ratings.xlsx")
	require.NoError(t, os.WriteFile(lockPath, nil, 0644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
		warns   bool
	}{
		{name: "csv file", path: csvPath},
		{name: "unknown extension is accepted", path: datPath, warns: true},
		{name: "missing file", path: filepath.Join(dir, "absent.csv"), wantErr: true},
		{name: "directory", path: dir, wantErr: true},
		{name: "excel lock file", path: lockPath, wantErr: true},
		{name: "empty path", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)

			err := NewFileValidator(logger).ValidateInputFile(tt.path)

			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrSourceNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.warns, handler.ContainsMessage("Unrecognised input extension, reading as delimited text"))
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")

		require.NoError(t, v.ValidateOutputDirectory(dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write check file is removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))

		err := v.ValidateOutputDirectory(filepath.Join(blocker, "out"))

		assert.ErrorIs(t, err, errors.ErrStorage)
	})
}
