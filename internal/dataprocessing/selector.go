package dataprocessing

import (
	"context"
	"log/slog"

	"ratingprep/internal/errors"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

// Selector projects a Table onto userId, movieId, rating and, when present, timestamp
type Selector struct {
	logger *slog.Logger
}

// NewSelector creates a Selector
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{logger: logger.With("component", "selector")}
}

// Select returns the canonical projection in fixed column order. No rows are removed.
func (s *Selector) Select(ctx context.Context, t *table.Table) (*table.Table, error) {
	names := FeatureColumns(t)
	for _, name := range domain.CriticalColumns {
		if !t.Has(name) {
			_, err := t.Column(name)
			return nil, errors.NewSchemaError("select", err)
		}
	}

	out, err := t.Select(names...)
	if err != nil {
		return nil, errors.NewSchemaError("select", err)
	}

	s.logger.InfoContext(ctx, "Features selected",
		slog.Any("columns", names),
		slog.Int("dropped_columns", t.ColumnCount()-out.ColumnCount()),
		slog.Int("rows", out.RowCount()))

	return out, nil
}

// FeatureColumns lists the canonical columns t carries, in output order
func FeatureColumns(t *table.Table) []string {
	names := append([]string(nil), domain.CriticalColumns...)
	for _, name := range domain.OptionalColumns {
		if t.Has(name) {
			names = append(names, name)
		}
	}
	return names
}
