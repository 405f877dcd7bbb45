package dataprocessing

import (
	"time"

	"ratingprep/internal/config"
)

// Input formats recognised by the Loader
const (
	FormatDelimited = "delimited"
	FormatWorkbook  = "xlsx"
)

// Text encodings the Loader can report
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// maxMalformedSamples bounds how many skipped line numbers a LoadReport keeps
const maxMalformedSamples = 10

// LoaderOptions controls tokenization of raw input
type LoaderOptions struct {
	// Delimiter separates fields in delimited text. Files ending in .tsv always use a tab.
	Delimiter rune
	// Sheet selects a workbook sheet; empty means the first sheet.
	Sheet string
	// MissingTokens are read as missing in addition to the empty string.
	MissingTokens []string
	// ProgressInterval throttles progress logs for large inputs.
	ProgressInterval time.Duration
}

// DefaultLoaderOptions returns comma-delimited options with the standard missing tokens
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		Delimiter:        ',',
		MissingTokens:    append([]string(nil), config.DefaultMissingTokens...),
		ProgressInterval: 5 * time.Second,
	}
}

// LoaderOptionsFromConfig converts the loader section of the application config
func LoaderOptionsFromConfig(cfg config.LoaderConfig) LoaderOptions {
	opts := DefaultLoaderOptions()
	if cfg.Delimiter != "" {
		opts.Delimiter = []rune(cfg.Delimiter)[0]
	}
	opts.Sheet = cfg.Sheet
	if cfg.MissingTokens != nil {
		opts.MissingTokens = cfg.MissingTokens
	}
	return opts
}

// LoadReport describes what the Loader read and what it had to skip or coerce
type LoadReport struct {
	Source   string `json:"source"`
	Format   string `json:"format"`
	Encoding string `json:"encoding"`
	Sheet    string `json:"sheet,omitempty"`

	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`

	// MalformedLines counts input lines skipped because they could not be tokenized
	MalformedLines   int   `json:"malformed_lines"`
	MalformedSamples []int `json:"malformed_samples,omitempty"`

	// CoercedValues counts, per canonical column, values that failed to parse and became missing
	CoercedValues map[string]int `json:"coerced_values,omitempty"`
}

func (r *LoadReport) addMalformed(line int) {
	r.MalformedLines++
	if len(r.MalformedSamples) < maxMalformedSamples {
		r.MalformedSamples = append(r.MalformedSamples, line)
	}
}
