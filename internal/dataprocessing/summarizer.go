package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"ratingprep/internal/config"
	"ratingprep/internal/errors"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

// Summarizer computes the aggregate report of a final ratings Table: descriptive
// statistics, per-user and per-movie counts, activity summaries and histogram data.
type Summarizer struct {
	logger       *slog.Logger
	ratingBins   int
	activityBins int
}

// NewSummarizer creates a new summarizer with the given configuration
func NewSummarizer(logger *slog.Logger, cfg SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}

	// Set default configuration values
	if cfg.RatingBins <= 0 {
		cfg.RatingBins = config.DefaultRatingBins
	}
	if cfg.ActivityBins <= 0 {
		cfg.ActivityBins = config.DefaultActivityBins
	}

	return &Summarizer{
		logger:       logger.With("component", "summarizer"),
		ratingBins:   cfg.RatingBins,
		activityBins: cfg.ActivityBins,
	}
}

// Summarize builds the full RatingsSummary. The grouping keys must be Int columns.
func (s *Summarizer) Summarize(ctx context.Context, t *table.Table) (*domain.RatingsSummary, error) {
	if err := checkCriticalColumns(t); err != nil {
		return nil, errors.NewSchemaError("report", err)
	}

	perUser, err := s.GroupCounts(t, domain.ColumnUserID)
	if err != nil {
		return nil, errors.NewSchemaError("report", err)
	}
	perMovie, err := s.GroupCounts(t, domain.ColumnMovieID)
	if err != nil {
		return nil, errors.NewSchemaError("report", err)
	}
	rating, err := t.NumericColumn(domain.ColumnRating)
	if err != nil {
		return nil, errors.NewSchemaError("report", err)
	}

	summary := &domain.RatingsSummary{
		Rows:               t.RowCount(),
		Columns:            t.ColumnNames(),
		Statistics:         s.Describe(t),
		RatingsPerUser:     perUser,
		RatingsPerMovie:    perMovie,
		UserActivity:       activity(perUser),
		MovieActivity:      activity(perMovie),
		RatingDistribution: histogram(rating.NumericValues(), s.ratingBins),
		UserDistribution:   histogram(groupSizes(perUser), s.activityBins),
		MovieDistribution:  histogram(groupSizes(perMovie), s.activityBins),
	}

	s.logger.InfoContext(ctx, "Summary computed",
		slog.Int("rows", summary.Rows),
		slog.Int("users", summary.UserActivity.Entities),
		slog.Int("movies", summary.MovieActivity.Entities),
		slog.Float64("avg_ratings_per_user", summary.UserActivity.Average),
		slog.Float64("avg_ratings_per_movie", summary.MovieActivity.Average))

	return summary, nil
}

// Describe returns count, mean, sample std, min, quartiles and max for every
// Int or Float column, in column order. Empty columns report zeros.
func (s *Summarizer) Describe(t *table.Table) []domain.ColumnStatistics {
	var stats []domain.ColumnStatistics
	for _, col := range t.Columns() {
		if !col.Kind().Numeric() {
			continue
		}
		values := col.NumericValues()
		st := domain.ColumnStatistics{Column: col.Name(), Count: len(values)}
		if m, ok := mean(values); ok {
			sorted := sortedCopy(values)
			st.Mean = m
			st.Std = sampleStd(values, m)
			st.Min = sorted[0]
			st.P25 = quantile(sorted, 0.25)
			st.Median = quantile(sorted, 0.5)
			st.P75 = quantile(sorted, 0.75)
			st.Max = sorted[len(sorted)-1]
		}
		stats = append(stats, st)
	}
	return stats
}

// GroupCounts counts non-missing rows per value of an Int column, sorted by key
func (s *Summarizer) GroupCounts(t *table.Table, column string) ([]domain.GroupCount, error) {
	col, err := t.IntColumn(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int)
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) {
			counts[col.Int(i)]++
		}
	}

	out := make([]domain.GroupCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, domain.GroupCount{Key: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func activity(groups []domain.GroupCount) domain.ActivityStats {
	if len(groups) == 0 {
		return domain.ActivityStats{}
	}
	st := domain.ActivityStats{Entities: len(groups), Min: groups[0].Count, Max: groups[0].Count}
	total := 0
	for _, g := range groups {
		total += g.Count
		if g.Count < st.Min {
			st.Min = g.Count
		}
		if g.Count > st.Max {
			st.Max = g.Count
		}
	}
	st.Average = float64(total) / float64(len(groups))
	return st
}

func groupSizes(groups []domain.GroupCount) []float64 {
	out := make([]float64, len(groups))
	for i, g := range groups {
		out[i] = float64(g.Count)
	}
	return out
}
