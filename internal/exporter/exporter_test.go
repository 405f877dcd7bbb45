package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingprep/internal/config"
	"ratingprep/internal/errors"
	"ratingprep/internal/shared/testutil"
	"ratingprep/pkg/contracts/domain"
)

func TestExporter_Export(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	dir := t.TempDir()
	opts := Options{
		CleanedCSV:  filepath.Join(dir, config.CleanedCSVFile),
		SummaryJSON: filepath.Join(dir, config.SummaryJSONFile),
		ReportXLSX:  filepath.Join(dir, config.ReportXLSXFile),
	}
	tbl := testutil.RatingsTable(t, []testutil.RatingRow{
		{UserID: 1, MovieID: 10, Rating: 3, Timestamp: 1000},
	})

	artifacts, err := NewExporter(logger, opts).Export(context.Background(), tbl, sampleSummary())
	require.NoError(t, err)

	require.Len(t, artifacts, 3)
	assert.Equal(t, ArtifactCleanedCSV, artifacts[0].Kind)
	assert.Equal(t, ArtifactReportXLSX, artifacts[1].Kind)
	assert.Equal(t, ArtifactSummaryJSON, artifacts[2].Kind)
	for _, a := range artifacts {
		assert.FileExists(t, a.Path)
		assert.Positive(t, a.Bytes, a.Kind)
	}

	assert.Equal(t, []string{"userId,movieId,rating,timestamp", "1,10,3,1000"}, readLines(t, opts.CleanedCSV))

	var decoded domain.RatingsSummary
	require.NoError(t, ReadJSON(opts.SummaryJSON, &decoded))
	assert.Equal(t, *sampleSummary(), decoded)

	assert.True(t, handler.ContainsMessage("Artifacts exported"))
}

func TestExporter_DisabledArtifacts(t *testing.T) {
	dir := t.TempDir()
	opts := Options{SummaryJSON: filepath.Join(dir, "summary.json")}

	artifacts, err := NewExporter(nil, opts).Export(context.Background(), testutil.RatingsTable(t, nil), &domain.RatingsSummary{})
	require.NoError(t, err)

	require.Len(t, artifacts, 1)
	assert.Equal(t, ArtifactSummaryJSON, artifacts[0].Kind)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestExporter_StorageError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	opts := Options{
		CleanedCSV:  filepath.Join(dir, "ok.csv"),
		SummaryJSON: filepath.Join(blocker, "summary.json"),
	}

	artifacts, err := NewExporter(nil, opts).Export(context.Background(), testutil.RatingsTable(t, nil), &domain.RatingsSummary{})

	assert.Nil(t, artifacts)
	assert.ErrorIs(t, err, errors.ErrStorage)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	paths := config.NewPaths("/work", cfg)

	opts := OptionsFromConfig(cfg.Report, paths)
	assert.Equal(t, Options{
		CleanedCSV:  paths.CleanedCSV,
		SummaryJSON: paths.SummaryJSON,
		ReportXLSX:  paths.ReportXLSX,
		CSV:         WriteOptions{Delimiter: ','},
	}, opts)

	cfg.Report.WriteXLSX = false
	cfg.Report.WriteCSV = false
	opts = OptionsFromConfig(cfg.Report, paths)
	assert.Empty(t, opts.ReportXLSX)
	assert.Empty(t, opts.CleanedCSV)
	assert.Equal(t, filepath.Join("/work", "output", "summary.json"), opts.SummaryJSON)

	cfg.Report.CSVDelimiter = ";"
	cfg.Report.CSVBOM = true
	opts = OptionsFromConfig(cfg.Report, paths)
	assert.Equal(t, WriteOptions{BOMPrefix: true, Delimiter: ';'}, opts.CSV)
}

func TestExporter_CSVLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Report.WriteJSON = false
	cfg.Report.WriteXLSX = false
	cfg.Report.CSVDelimiter = ";"
	cfg.Report.CSVBOM = true
	paths := config.NewPaths(t.TempDir(), cfg)
	tbl := testutil.RatingsTable(t, []testutil.RatingRow{
		{UserID: 1, MovieID: 10, Rating: 3.5, Timestamp: 1000},
	})

	artifacts, err := NewExporter(nil, OptionsFromConfig(cfg.Report, paths)).Export(context.Background(), tbl, &domain.RatingsSummary{})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	content, err := os.ReadFile(paths.CleanedCSV)
	require.NoError(t, err)
	assert.Equal(t, string(utf8BOM)+"userId;movieId;rating;timestamp\n1;10;3.5;1000\n", string(content))
}
