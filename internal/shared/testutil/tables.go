package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

// RatingsCSV is the four-row scenario used across stage tests: one duplicate
// pair, one row missing movieId and one rating outside the scale.
const RatingsCSV = `userId,movieId,rating,timestamp
1,10,3,1000
1,10,3,1000
2,,4,1001
3,20,9,1002
`

// RatingRow describes one ratings fixture row
type RatingRow struct {
	UserID    int64
	MovieID   int64
	Rating    float64
	Timestamp int64

	MissingUser      bool
	MissingMovie     bool
	MissingRating    bool
	MissingTimestamp bool
}

// RatingsTable builds a userId,movieId,rating,timestamp table from rows
func RatingsTable(t testing.TB, rows []RatingRow) *table.Table {
	t.Helper()
	n := len(rows)
	users, movies, stamps := make([]int64, n), make([]int64, n), make([]int64, n)
	ratings := make([]float64, n)
	userNull, movieNull, ratingNull, stampNull := make([]bool, n), make([]bool, n), make([]bool, n), make([]bool, n)

	for i, r := range rows {
		users[i], userNull[i] = r.UserID, r.MissingUser
		movies[i], movieNull[i] = r.MovieID, r.MissingMovie
		ratings[i], ratingNull[i] = r.Rating, r.MissingRating
		stamps[i], stampNull[i] = r.Timestamp, r.MissingTimestamp
	}

	tbl, err := table.New(
		table.NewIntColumn(domain.ColumnUserID, users, userNull),
		table.NewIntColumn(domain.ColumnMovieID, movies, movieNull),
		table.NewFloatColumn(domain.ColumnRating, ratings, ratingNull),
		table.NewIntColumn(domain.ColumnTimestamp, stamps, stampNull),
	)
	if err != nil {
		t.Fatalf("build ratings table: %v", err)
	}
	return tbl
}

// WriteFile writes content to name inside a fresh temp dir and returns the path
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
