package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingprep/internal/errors"
	"ratingprep/internal/shared/testutil"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

func summaryFixture(t *testing.T) *table.Table {
	return testutil.RatingsTable(t, []testutil.RatingRow{
		{UserID: 1, MovieID: 10, Rating: 1, Timestamp: 100},
		{UserID: 1, MovieID: 20, Rating: 2, Timestamp: 200},
		{UserID: 2, MovieID: 10, Rating: 3, Timestamp: 300},
		{UserID: 1, MovieID: 30, Rating: 4, Timestamp: 400},
	})
}

func TestSummarizer_Describe(t *testing.T) {
	s := NewSummarizer(nil, SummarizerConfig{})

	stats := s.Describe(summaryFixture(t))

	require.Len(t, stats, 4)
	rating := stats[2]
	assert.Equal(t, domain.ColumnRating, rating.Column)
	assert.Equal(t, 4, rating.Count)
	assert.InDelta(t, 2.5, rating.Mean, 1e-12)
	assert.InDelta(t, 1.2909944487, rating.Std, 1e-9, "sample standard deviation")
	assert.Equal(t, 1.0, rating.Min)
	assert.InDelta(t, 1.75, rating.P25, 1e-12)
	assert.InDelta(t, 2.5, rating.Median, 1e-12)
	assert.InDelta(t, 3.25, rating.P75, 1e-12)
	assert.Equal(t, 4.0, rating.Max)
}

func TestSummarizer_DescribeSkipsNonNumericAndEmpty(t *testing.T) {
	s := NewSummarizer(nil, SummarizerConfig{})
	tbl := table.MustNew(
		table.NewFloatColumn("a", []float64{0, 0}, []bool{true, true}),
		table.NewStringColumn("b", []string{"x", "y"}, nil),
		table.NewIntColumn("c", []int64{7, 7}, []bool{false, true}),
	)

	stats := s.Describe(tbl)

	require.Len(t, stats, 2)
	assert.Equal(t, domain.ColumnStatistics{Column: "a"}, stats[0])
	assert.Equal(t, 1, stats[1].Count)
	assert.Zero(t, stats[1].Std, "a single value has no sample deviation")
	assert.Equal(t, 7.0, stats[1].Median)
}

func TestSummarizer_Summarize(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	s := NewSummarizer(logger, SummarizerConfig{RatingBins: 4, ActivityBins: 2})

	summary, err := s.Summarize(context.Background(), summaryFixture(t))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, []domain.GroupCount{{Key: 1, Count: 3}, {Key: 2, Count: 1}}, summary.RatingsPerUser)
	assert.Equal(t, []domain.GroupCount{{Key: 10, Count: 2}, {Key: 20, Count: 1}, {Key: 30, Count: 1}}, summary.RatingsPerMovie)
	assert.Equal(t, domain.ActivityStats{Entities: 2, Min: 1, Max: 3, Average: 2}, summary.UserActivity)
	assert.InDelta(t, 4.0/3.0, summary.MovieActivity.Average, 1e-12)

	require.Len(t, summary.RatingDistribution, 4)
	assert.Equal(t, 1.0, summary.RatingDistribution[0].Lower)
	assert.Equal(t, 4.0, summary.RatingDistribution[3].Upper)
	for _, bin := range summary.RatingDistribution {
		assert.Equal(t, 1, bin.Count)
	}
	require.Len(t, summary.UserDistribution, 2)
	assert.Equal(t, 1, summary.UserDistribution[0].Count)
	assert.Equal(t, 1, summary.UserDistribution[1].Count)
	require.Len(t, summary.MovieDistribution, 2)
	assert.Equal(t, 2, summary.MovieDistribution[0].Count)

	assert.True(t, handler.ContainsMessage("Summary computed"))
}

func TestSummarizer_EmptyTable(t *testing.T) {
	summary, err := NewSummarizer(nil, SummarizerConfig{}).Summarize(context.Background(), testutil.RatingsTable(t, nil))
	require.NoError(t, err)

	assert.Zero(t, summary.Rows)
	assert.Empty(t, summary.RatingsPerUser)
	assert.Nil(t, summary.RatingDistribution)
	assert.Equal(t, domain.ActivityStats{}, summary.UserActivity)
}

func TestSummarizer_SchemaError(t *testing.T) {
	tbl := table.MustNew(
		table.NewFloatColumn(domain.ColumnUserID, []float64{1}, nil),
		table.NewIntColumn(domain.ColumnMovieID, []int64{1}, nil),
		table.NewFloatColumn(domain.ColumnRating, []float64{1}, nil),
	)

	_, err := NewSummarizer(nil, SummarizerConfig{}).Summarize(context.Background(), tbl)

	assert.ErrorIs(t, err, errors.ErrSchema)
	assert.ErrorIs(t, err, table.ErrColumnType)
}

func TestSummarizer_GroupCountsErrors(t *testing.T) {
	s := NewSummarizer(nil, SummarizerConfig{})
	tbl := table.MustNew(
		table.NewIntColumn(domain.ColumnUserID, []int64{2, 1, 2}, []bool{false, false, false}),
		table.NewFloatColumn(domain.ColumnRating, []float64{1, 2, 3}, nil),
	)

	counts, err := s.GroupCounts(tbl, domain.ColumnUserID)
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupCount{{Key: 1, Count: 1}, {Key: 2, Count: 2}}, counts)

	_, err = s.GroupCounts(tbl, domain.ColumnMovieID)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)

	_, err = s.GroupCounts(tbl, domain.ColumnRating)
	assert.ErrorIs(t, err, table.ErrColumnType)
}
