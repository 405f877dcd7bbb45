package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records with bound attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		child := logger.With("component", "cleaner")
		child.Info("rows dropped", slog.Int("count", 2))
		logger.Error("failed", slog.String("stage", "load"))

		records := handler.GetRecords()
		require.Len(t, records, 2)
		assert.Equal(t, "cleaner", records[0].Attrs["component"])
		assert.Equal(t, int64(2), records[0].Attrs["count"])
		assert.NotContains(t, records[1].Attrs, "component")
		assert.True(t, handler.ContainsAttr("stage", "load"))
		assert.True(t, handler.ContainsMessage("failed"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("d")
		logger.Info("i")
		logger.Warn("w")
		logger.Warn("w")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 2)
		assert.Equal(t, 2, handler.CountMessage("w"))
		AssertLogContains(t, handler, slog.LevelDebug, "d")
		AssertNoErrors(t, handler)
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		logger.Info("x")
		handler.Clear()
		assert.Zero(t, handler.Count())
	})

	t.Run("concurrent writes", func(t *testing.T) {
		logger, handler := NewTestLogger(nil)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				logger.Info("tick", "i", i)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 20, handler.Count())
	})
}

func TestRatingsFixtures(t *testing.T) {
	tbl := RatingsTable(t, []RatingRow{
		{UserID: 1, MovieID: 10, Rating: 3, Timestamp: 1000},
		{UserID: 2, MovieID: 10, Rating: 4.5, Timestamp: 2000, MissingTimestamp: true},
	})

	assert.Equal(t, 2, tbl.RowCount())
	ts, err := tbl.Column("timestamp")
	require.NoError(t, err)
	assert.True(t, ts.IsNull(1))

	path := WriteFile(t, "ratings.csv", RatingsCSV)
	assert.FileExists(t, path)
}
