package operations

import (
	"ratingprep/internal/config"
	"ratingprep/internal/dataprocessing"
	"ratingprep/internal/exporter"
	"ratingprep/pkg/contracts/domain"
)

// Config represents the pipeline execution configuration
type Config struct {
	// Loader controls tokenization of the input file
	Loader dataprocessing.LoaderOptions

	// Scale is the closed interval of valid ratings
	Scale domain.RatingScale

	// Summarizer controls histogram binning
	Summarizer dataprocessing.SummarizerConfig

	// Export selects the artifacts written by the report step
	Export exporter.Options

	// ManifestPath is where the run manifest is written; empty disables it
	ManifestPath string
}

// NewConfig returns the default pipeline configuration. No artifacts are written.
func NewConfig() *Config {
	return &Config{
		Loader:     dataprocessing.DefaultLoaderOptions(),
		Scale:      domain.DefaultRatingScale(),
		Summarizer: dataprocessing.SummarizerConfig{},
	}
}

// ConfigFromApp builds the pipeline configuration from the application config
func ConfigFromApp(cfg *config.Config, paths *config.Paths) *Config {
	return &Config{
		Loader:       dataprocessing.LoaderOptionsFromConfig(cfg.Loader),
		Scale:        cfg.Cleaning.RatingScale(),
		Summarizer:   dataprocessing.SummarizerConfigFromConfig(cfg.Report),
		Export:       exporter.OptionsFromConfig(cfg.Report, paths),
		ManifestPath: paths.ManifestJSON,
	}
}
