package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingprep/internal/errors"
	"ratingprep/internal/shared/testutil"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

func TestProcessor_Scenario(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	ctx := context.Background()

	loaded, _, err := NewLoader(logger, DefaultLoaderOptions()).LoadReader(ctx, strings.NewReader(testutil.RatingsCSV), "scenario.csv")
	require.NoError(t, err)

	res, err := NewProcessor(logger, domain.DefaultRatingScale()).Process(ctx, loaded)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Table.RowCount())
	assert.Equal(t, []string{
		domain.ColumnUserID, domain.ColumnMovieID, domain.ColumnRating,
		domain.ColumnTimestamp, domain.ColumnRatingNormalized,
	}, res.Table.ColumnNames())
	assert.Equal(t, []string{"1", "10", "3", "1970-01-01 00:16:40", "0"}, res.Table.Row(0).Values())

	assert.Equal(t, 1, res.Clean.DroppedMissingCritical)
	assert.Equal(t, 1, res.Clean.DroppedOutOfRange)
	assert.Equal(t, 1, res.Clean.DroppedDuplicates)
	assert.True(t, res.Transform.Degenerate)
	assert.Zero(t, res.Diagnostics.Len())
	testutil.AssertNoErrors(t, handler)
}

func TestProcessor_CollectsWarnings(t *testing.T) {
	tbl := testutil.RatingsTable(t, []testutil.RatingRow{
		{UserID: 1, MovieID: 10, Rating: 4, Timestamp: 100},
		{UserID: 2, MovieID: 20, Rating: 2, MissingTimestamp: true},
		{UserID: 3, MovieID: 30, Rating: 3, Timestamp: -99999999999999},
	})

	res, err := NewProcessor(nil, domain.DefaultRatingScale()).Process(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Table.RowCount())
	assert.Equal(t, 1, res.Clean.Imputed[domain.ColumnTimestamp])
	// the imputed mean lies far outside the representable epoch range as well
	assert.Equal(t, 2, res.Transform.TemporalFailures)
	assert.Equal(t, 2, res.Diagnostics.Count(errors.ErrTypeTemporal))
	assert.False(t, res.Transform.Degenerate)

	ts, err := res.Table.Column(domain.ColumnTimestamp)
	require.NoError(t, err)
	assert.Equal(t, table.KindTime, ts.Kind())
	assert.False(t, ts.ConversionFailed(0))
	assert.True(t, ts.ConversionFailed(2))
}

func TestProcessor_Idempotent(t *testing.T) {
	tbl := testutil.RatingsTable(t, []testutil.RatingRow{
		{UserID: 1, MovieID: 10, Rating: 4, Timestamp: 100},
		{UserID: 2, MovieID: 20, Rating: 2, MissingTimestamp: true},
		{UserID: 2, MovieID: 20, Rating: 2, MissingTimestamp: true},
		{UserID: 3, MovieID: 30, Rating: 5, Timestamp: 400},
	})
	p := NewProcessor(nil, domain.DefaultRatingScale())

	first, err := p.Process(context.Background(), tbl)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), first.Table)
	require.NoError(t, err)

	assert.True(t, first.Table.Equal(second.Table))
	assert.Zero(t, second.Clean.RowsDropped())
}

func TestProcessor_StopsOnSchemaError(t *testing.T) {
	tbl := table.MustNew(
		table.NewIntColumn(domain.ColumnUserID, []int64{1}, nil),
		table.NewFloatColumn(domain.ColumnRating, []float64{3}, nil),
	)

	res, err := NewProcessor(nil, domain.DefaultRatingScale()).Process(context.Background(), tbl)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, errors.ErrSchema)
}
