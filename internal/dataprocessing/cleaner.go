package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"ratingprep/internal/errors"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

// Cleaner enforces row validity and fills residual numeric gaps. Its steps run in
// a fixed order: drop rows missing a critical column, drop ratings outside the
// scale, impute remaining numeric gaps with the column mean, drop duplicate rows.
type Cleaner struct {
	logger *slog.Logger
	scale  domain.RatingScale
}

// NewCleaner creates a Cleaner for the given rating scale
func NewCleaner(logger *slog.Logger, scale domain.RatingScale) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With("component", "cleaner"), scale: scale}
}

// Clean returns a new Table satisfying the cleaning invariants. It fails with a
// SCHEMA error when a critical column is absent or mistyped. Columns whose mean
// is undefined are reported as warnings in the CleanReport.
func (c *Cleaner) Clean(ctx context.Context, t *table.Table) (*table.Table, *CleanReport, error) {
	if err := checkCriticalColumns(t); err != nil {
		return nil, nil, errors.NewSchemaError("clean", err)
	}

	report := &CleanReport{
		RowsIn:        t.RowCount(),
		MissingBefore: t.MissingCounts(),
	}
	c.logMissing(ctx, "Missing values before cleaning", report.MissingBefore)

	// 1. critical-column completeness
	complete := t.Filter(func(r table.Row) bool {
		for _, name := range domain.CriticalColumns {
			if r.IsNull(name) {
				return false
			}
		}
		return true
	})
	report.DroppedMissingCritical = t.RowCount() - complete.RowCount()

	// 2. rating range
	inRange := complete.Filter(func(r table.Row) bool {
		rating, err := r.Float(domain.ColumnRating)
		return err == nil && c.scale.Contains(rating)
	})
	report.DroppedOutOfRange = complete.RowCount() - inRange.RowCount()

	// 3. mean imputation, after the filters above
	imputed, err := c.impute(ctx, inRange, report)
	if err != nil {
		return nil, nil, err
	}

	// 4. exact duplicates, first occurrence wins
	deduped := dropDuplicates(imputed)
	report.DroppedDuplicates = imputed.RowCount() - deduped.RowCount()

	report.RowsOut = deduped.RowCount()
	report.MissingAfter = deduped.MissingCounts()
	c.logMissing(ctx, "Missing values after cleaning", report.MissingAfter)

	c.logger.InfoContext(ctx, "Cleaning completed",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("rows_dropped", report.RowsDropped()),
		slog.Int("dropped_missing_critical", report.DroppedMissingCritical),
		slog.Int("dropped_out_of_range", report.DroppedOutOfRange),
		slog.Int("dropped_duplicates", report.DroppedDuplicates))

	return deduped, report, nil
}

// impute fills every non-critical numeric column with its mean. Int columns get
// the mean rounded half away from zero.
func (c *Cleaner) impute(ctx context.Context, t *table.Table, report *CleanReport) (*table.Table, error) {
	out := t
	for _, col := range t.Columns() {
		if domain.IsCritical(col.Name()) || !col.Kind().Numeric() {
			continue
		}
		missing := col.NullCount()
		if missing == 0 {
			continue
		}

		m, ok := mean(col.NumericValues())
		if !ok {
			warning := errors.NewImputationUndefinedWarning(col.Name(), missing)
			report.Warnings = append(report.Warnings, warning)
			c.logger.WarnContext(ctx, "Mean undefined, missing values left unfilled",
				slog.String("column", col.Name()),
				slog.Int("missing", missing))
			continue
		}

		filled := fillColumn(col, m)
		var err error
		if out, err = out.WithColumn(filled); err != nil {
			return nil, fmt.Errorf("impute %s: %w", col.Name(), err)
		}

		if report.Imputed == nil {
			report.Imputed = make(map[string]int)
			report.ImputationMeans = make(map[string]float64)
		}
		report.Imputed[col.Name()] = missing
		report.ImputationMeans[col.Name()] = m

		c.logger.DebugContext(ctx, "Imputed missing values",
			slog.String("column", col.Name()),
			slog.Int("filled", missing),
			slog.Float64("mean", m))
	}
	return out, nil
}

func (c *Cleaner) logMissing(ctx context.Context, msg string, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make([]any, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, slog.Int(name, counts[name]))
	}
	c.logger.InfoContext(ctx, msg, slog.Group("missing", attrs...))
}

// fillColumn replaces missing entries of a numeric column with m
func fillColumn(col *table.Column, m float64) *table.Column {
	n := col.Len()
	if col.Kind() == table.KindInt {
		fill := int64(math.Round(m))
		values := make([]int64, n)
		for i := 0; i < n; i++ {
			if col.IsNull(i) {
				values[i] = fill
			} else {
				values[i] = col.Int(i)
			}
		}
		return table.NewIntColumn(col.Name(), values, nil)
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			values[i] = m
		} else {
			values[i] = col.Float(i)
		}
	}
	return table.NewFloatColumn(col.Name(), values, nil)
}

// dropDuplicates keeps the first occurrence of every distinct row
func dropDuplicates(t *table.Table) *table.Table {
	seen := make(map[string]struct{}, t.RowCount())
	return t.Filter(func(r table.Row) bool {
		key := t.RowKey(r.Index())
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// checkCriticalColumns requires userId and movieId as Int and rating as numeric
func checkCriticalColumns(t *table.Table) error {
	if _, err := t.IntColumn(domain.ColumnUserID); err != nil {
		return err
	}
	if _, err := t.IntColumn(domain.ColumnMovieID); err != nil {
		return err
	}
	if _, err := t.NumericColumn(domain.ColumnRating); err != nil {
		return err
	}
	return nil
}
