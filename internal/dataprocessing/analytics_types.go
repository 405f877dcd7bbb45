package dataprocessing

import (
	"ratingprep/internal/config"
	"ratingprep/internal/errors"
)

// CleanReport records what the Cleaner removed and filled
type CleanReport struct {
	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	DroppedMissingCritical int `json:"dropped_missing_critical"`
	DroppedOutOfRange      int `json:"dropped_out_of_range"`
	DroppedDuplicates      int `json:"dropped_duplicates"`

	MissingBefore map[string]int `json:"missing_before"`
	MissingAfter  map[string]int `json:"missing_after"`

	// Imputed is the number of values filled per column
	Imputed map[string]int `json:"imputed,omitempty"`
	// ImputationMeans is the mean used per filled column
	ImputationMeans map[string]float64 `json:"imputation_means,omitempty"`

	Warnings []*errors.AppError `json:"-"`
}

// RowsDropped is the total row count delta
func (r *CleanReport) RowsDropped() int {
	return r.RowsIn - r.RowsOut
}

// TransformReport records the normalization parameters and temporal conversion outcome
type TransformReport struct {
	Rows int `json:"rows"`

	Mean       float64 `json:"rating_mean"`
	StdDev     float64 `json:"rating_std"`
	Degenerate bool    `json:"degenerate"`

	TemporalConverted int `json:"temporal_converted"`
	TemporalFailures  int `json:"temporal_failures"`

	Warnings []*errors.AppError `json:"-"`
}

// SummarizerConfig holds configuration options for the Summarizer
type SummarizerConfig struct {
	RatingBins   int // Bins for the rating distribution
	ActivityBins int // Bins for ratings-per-user and ratings-per-movie distributions
}

// SummarizerConfigFromConfig converts the report section of the application config
func SummarizerConfigFromConfig(cfg config.ReportConfig) SummarizerConfig {
	return SummarizerConfig{RatingBins: cfg.RatingBins, ActivityBins: cfg.ActivityBins}
}
