package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"ratingprep/internal/errors"
	"ratingprep/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "RATINGPREP"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Loader    LoaderConfig    `yaml:"loader" envconfig:"LOADER"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	// FilePath defaults to ratingprep.log inside the logs directory
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations, relative to the working directory
// unless absolute
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// LoaderConfig controls how raw input is tokenized
type LoaderConfig struct {
	Delimiter     string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"required,len=1"`
	Sheet         string   `yaml:"sheet" envconfig:"SHEET"`
	MissingTokens []string `yaml:"missing_tokens" envconfig:"MISSING_TOKENS"`
}

// CleaningConfig controls row validity rules
type CleaningConfig struct {
	RatingMin float64 `yaml:"rating_min" envconfig:"RATING_MIN" validate:"ltfield=RatingMax"`
	RatingMax float64 `yaml:"rating_max" envconfig:"RATING_MAX"`
}

// ReportConfig controls which artifacts are written and how distributions are binned
type ReportConfig struct {
	RatingBins   int  `yaml:"rating_bins" envconfig:"RATING_BINS" validate:"min=1,max=1000"`
	ActivityBins int  `yaml:"activity_bins" envconfig:"ACTIVITY_BINS" validate:"min=1,max=1000"`
	WriteCSV     bool `yaml:"write_csv" envconfig:"WRITE_CSV"`
	WriteJSON    bool `yaml:"write_json" envconfig:"WRITE_JSON"`
	WriteXLSX    bool `yaml:"write_xlsx" envconfig:"WRITE_XLSX"`

	// CSVDelimiter separates fields of the cleaned CSV
	CSVDelimiter string `yaml:"csv_delimiter" envconfig:"CSV_DELIMITER" validate:"required,len=1"`
	// CSVBOM prefixes the cleaned CSV with a UTF-8 BOM so Excel detects the encoding
	CSVBOM bool `yaml:"csv_bom" envconfig:"CSV_BOM"`
}

// TelemetryConfig controls tracing and metrics output. Nothing listens on the network.
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout file"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=TraceExporter file"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// RatingScale returns the configured closed rating interval
func (c CleaningConfig) RatingScale() domain.RatingScale {
	return domain.RatingScale{Min: c.RatingMin, Max: c.RatingMax}
}

// Load builds the configuration from defaults, then the YAML file at path (or the
// first file found in the usual locations when path is empty), then environment
// variables. Later sources take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, errors.NewConfigError("failed to load config from file "+path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate normalizes and validates the configuration
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Telemetry.TraceExporter = strings.ToLower(c.Telemetry.TraceExporter)

	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("%s failed on %q (%d problem(s))", first.Namespace(), first.Tag(), len(verrs))
		}
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}

	locations := []string{
		"ratingprep.yaml",
		"configs/ratingprep.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
		},
		Paths: PathsConfig{
			OutputDir: DefaultOutputDir,
			LogsDir:   DefaultLogsDir,
		},
		Loader: LoaderConfig{
			Delimiter:     ",",
			MissingTokens: append([]string(nil), DefaultMissingTokens...),
		},
		Cleaning: CleaningConfig{
			RatingMin: domain.DefaultRatingScale().Min,
			RatingMax: domain.DefaultRatingScale().Max,
		},
		Report: ReportConfig{
			RatingBins:   DefaultRatingBins,
			ActivityBins: DefaultActivityBins,
			WriteCSV:     true,
			WriteJSON:    true,
			WriteXLSX:    true,
			CSVDelimiter: ",",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			MetricsFile:   DefaultMetricsFile,
		},
	}
}
