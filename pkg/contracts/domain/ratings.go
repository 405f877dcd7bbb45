package domain

// Canonical column names of a ratings dataset
const (
	ColumnUserID           = "userId"
	ColumnMovieID          = "movieId"
	ColumnRating           = "rating"
	ColumnTimestamp        = "timestamp"
	ColumnRatingNormalized = "rating_normalized"
)

// CriticalColumns are required in every row; a row missing any of them is unusable
var CriticalColumns = []string{ColumnUserID, ColumnMovieID, ColumnRating}

// OptionalColumns are kept by feature selection when present in the input
var OptionalColumns = []string{ColumnTimestamp}

// IsCritical reports whether name is one of the critical columns
func IsCritical(name string) bool {
	for _, c := range CriticalColumns {
		if c == name {
			return true
		}
	}
	return false
}

// RatingScale is the closed interval of valid ratings
type RatingScale struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultRatingScale is the 1..5 star scale of MovieLens-style datasets
func DefaultRatingScale() RatingScale {
	return RatingScale{Min: 1, Max: 5}
}

// Contains reports whether r lies within the closed interval
func (s RatingScale) Contains(r float64) bool {
	return r >= s.Min && r <= s.Max
}

// ColumnStatistics describes one numeric column of a final ratings table
type ColumnStatistics struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// GroupCount is the number of ratings observed for one key
type GroupCount struct {
	Key   int64 `json:"key"`
	Count int   `json:"count"`
}

// HistogramBin is one bucket of a distribution report
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// ActivityStats summarizes how many ratings each user or movie has
type ActivityStats struct {
	Entities int     `json:"entities"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Average  float64 `json:"average"`
}

// RatingsSummary is the aggregate report produced from a final ratings table
type RatingsSummary struct {
	Rows               int                `json:"rows"`
	Columns            []string           `json:"columns"`
	Statistics         []ColumnStatistics `json:"statistics"`
	RatingsPerUser     []GroupCount       `json:"ratings_per_user"`
	RatingsPerMovie    []GroupCount       `json:"ratings_per_movie"`
	UserActivity       ActivityStats      `json:"user_activity"`
	MovieActivity      ActivityStats      `json:"movie_activity"`
	RatingDistribution []HistogramBin     `json:"rating_distribution"`
	UserDistribution   []HistogramBin     `json:"ratings_per_user_distribution"`
	MovieDistribution  []HistogramBin     `json:"ratings_per_movie_distribution"`
}
