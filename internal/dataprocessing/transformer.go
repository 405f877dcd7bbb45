package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"time"

	"ratingprep/internal/errors"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

// previewRows is how many transformed rows are logged at debug level
const previewRows = 5

// Epoch seconds representable as a nanosecond int64 instant, 1677-09-21..2262-04-11
const (
	minEpochSeconds = math.MinInt64 / int64(time.Second)
	maxEpochSeconds = math.MaxInt64 / int64(time.Second)
)

// Transformer adds rating_normalized and converts timestamp to UTC date-times
type Transformer struct {
	logger *slog.Logger
}

// NewTransformer creates a Transformer
func NewTransformer(logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{logger: logger.With("component", "transformer")}
}

// Transform keeps every input column and row. Timestamps that cannot be
// converted keep their raw value, are marked failed and reported as TEMPORAL warnings.
func (tr *Transformer) Transform(ctx context.Context, t *table.Table) (*table.Table, *TransformReport, error) {
	rating, err := t.NumericColumn(domain.ColumnRating)
	if err != nil {
		return nil, nil, errors.NewSchemaError("transform", err)
	}

	report := &TransformReport{Rows: t.RowCount()}

	normalized := tr.normalize(rating, report)
	out, err := t.WithColumn(normalized)
	if err != nil {
		return nil, nil, errors.NewSchemaError("transform", err)
	}

	if t.Has(domain.ColumnTimestamp) {
		ts, _ := t.Column(domain.ColumnTimestamp)
		switch ts.Kind() {
		case table.KindTime:
			// already converted
		case table.KindInt:
			converted := tr.convertTimestamps(ctx, ts, report)
			if out, err = out.WithColumn(converted); err != nil {
				return nil, nil, errors.NewSchemaError("transform", err)
			}
		default:
			_, err := t.IntColumn(domain.ColumnTimestamp)
			return nil, nil, errors.NewSchemaError("transform", err)
		}
	}

	tr.logger.InfoContext(ctx, "Transformation completed",
		slog.Int("rows", report.Rows),
		slog.Float64("rating_mean", report.Mean),
		slog.Float64("rating_std", report.StdDev),
		slog.Bool("degenerate", report.Degenerate),
		slog.Int("temporal_converted", report.TemporalConverted),
		slog.Int("temporal_failures", report.TemporalFailures))

	if tr.logger.Enabled(ctx, slog.LevelDebug) {
		head := out.Head(previewRows)
		tr.logger.DebugContext(ctx, "Transformed rows preview",
			slog.Any("columns", head.ColumnNames()),
			slog.Int("preview_rows", head.RowCount()),
			slog.Any("rows", head.Records()))
	}

	return out, report, nil
}

// normalize computes (r-μ)/σ with the population σ. σ = 0 maps every value to 0.
func (tr *Transformer) normalize(rating *table.Column, report *TransformReport) *table.Column {
	values := rating.NumericValues()
	m, ok := mean(values)
	sigma := populationStd(values, m)

	report.Mean = m
	report.StdDev = sigma
	report.Degenerate = !ok || sigma == 0

	n := rating.Len()
	out := make([]float64, n)
	null := make([]bool, n)
	for i := 0; i < n; i++ {
		if rating.IsNull(i) {
			null[i] = true
			continue
		}
		if report.Degenerate {
			continue
		}
		out[i] = (rating.Float(i) - m) / sigma
	}
	return table.NewFloatColumn(domain.ColumnRatingNormalized, out, null)
}

func (tr *Transformer) convertTimestamps(ctx context.Context, ts *table.Column, report *TransformReport) *table.Column {
	n := ts.Len()
	times := make([]time.Time, n)
	raw := make([]int64, n)
	failed := make([]bool, n)
	null := make([]bool, n)

	for i := 0; i < n; i++ {
		if ts.IsNull(i) {
			null[i] = true
			continue
		}
		v := ts.Int(i)
		raw[i] = v
		if v < minEpochSeconds || v > maxEpochSeconds {
			failed[i] = true
			report.TemporalFailures++
			report.Warnings = append(report.Warnings, errors.NewTemporalWarning(ts.Name(), i, v))
			continue
		}
		times[i] = time.Unix(v, 0).UTC()
		report.TemporalConverted++
	}

	if report.TemporalFailures > 0 {
		tr.logger.WarnContext(ctx, "Timestamps out of range kept as raw values",
			slog.String("column", ts.Name()),
			slog.Int("count", report.TemporalFailures))
	}

	return table.NewTimeColumn(ts.Name(), times, raw, failed, null)
}
