package config

// Application constants
const (
	AppName = "ratingprep"

	// File Paths (relative to the working directory)
	DefaultOutputDir = "output"
	DefaultLogsDir   = "logs"
	DefaultLogFile   = "ratingprep.log"

	// Artifact file names inside the output directory
	CleanedCSVFile   = "cleaned_ratings.csv"
	SummaryJSONFile  = "summary.json"
	ReportXLSXFile   = "report.xlsx"
	ManifestJSONFile = "manifest.json"

	DefaultMetricsFile = "metrics.prom"

	// Distribution report bins, as in the original EDA plots
	DefaultRatingBins   = 20
	DefaultActivityBins = 30
)

// DefaultMissingTokens are cell values read as missing in addition to the empty string
var DefaultMissingTokens = []string{"NA", "N/A", "NaN", "nan", "null", "NULL"}
