package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ratingprep/pkg/contracts/domain"
)

// Report workbook sheet names, in tab order
const (
	SheetSummary         = "Summary"
	SheetRatingsPerUser  = "RatingsPerUser"
	SheetRatingsPerMovie = "RatingsPerMovie"
	SheetHistograms      = "Histograms"
)

// WorkbookWriter renders a RatingsSummary as an Excel workbook
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// WriteSummary writes the report workbook to filePath
func (w *WorkbookWriter) WriteSummary(ctx context.Context, filePath string, summary *domain.RatingsSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}
	if err := writeGroupSheet(f, SheetRatingsPerUser, domain.ColumnUserID, summary.RatingsPerUser); err != nil {
		return err
	}
	if err := writeGroupSheet(f, SheetRatingsPerMovie, domain.ColumnMovieID, summary.RatingsPerMovie); err != nil {
		return err
	}
	if err := writeHistogramSheet(f, summary); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.InfoContext(ctx, "Workbook written",
		slog.String("file_path", filePath),
		slog.Int("users", len(summary.RatingsPerUser)),
		slog.Int("movies", len(summary.RatingsPerMovie)))
	return nil
}

func writeSummarySheet(f *excelize.File, summary *domain.RatingsSummary) error {
	rows := [][]any{
		{"rows", summary.Rows},
		{"users", summary.UserActivity.Entities},
		{"movies", summary.MovieActivity.Entities},
		{"min_ratings_per_user", summary.UserActivity.Min},
		{"max_ratings_per_user", summary.UserActivity.Max},
		{"avg_ratings_per_user", summary.UserActivity.Average},
		{"min_ratings_per_movie", summary.MovieActivity.Min},
		{"max_ratings_per_movie", summary.MovieActivity.Max},
		{"avg_ratings_per_movie", summary.MovieActivity.Average},
		{},
		{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"},
	}
	for _, st := range summary.Statistics {
		rows = append(rows, []any{st.Column, st.Count, st.Mean, st.Std, st.Min, st.P25, st.Median, st.P75, st.Max})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

// writeGroupSheet streams one row per key; the per-key tables can be large
func writeGroupSheet(f *excelize.File, sheet, keyHeader string, groups []domain.GroupCount) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer for %s: %w", sheet, err)
	}

	if err := sw.SetRow("A1", []any{keyHeader, "count"}); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, g := range groups {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []any{g.Key, g.Count}); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return sw.Flush()
}

func writeHistogramSheet(f *excelize.File, summary *domain.RatingsSummary) error {
	if _, err := f.NewSheet(SheetHistograms); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetHistograms, err)
	}

	series := []struct {
		name string
		bins []domain.HistogramBin
	}{
		{domain.ColumnRating, summary.RatingDistribution},
		{"ratings_per_user", summary.UserDistribution},
		{"ratings_per_movie", summary.MovieDistribution},
	}

	if err := setRow(f, SheetHistograms, 1, []any{"distribution", "bin", "lower", "upper", "count"}); err != nil {
		return err
	}
	row := 2
	for _, s := range series {
		for i, b := range s.bins {
			label := formatBin(b.Lower, b.Upper, i == len(s.bins)-1)
			if err := setRow(f, SheetHistograms, row, []any{s.name, label, b.Lower, b.Upper, b.Count}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
