// Package config provides configuration management for ratingprep.
//
// # Overview
//
// Configuration is layered. Load starts from Default, overlays an optional YAML
// file, then overlays environment variables prefixed with RATINGPREP_. The
// result is validated with struct tags before it is returned.
//
// # Environment Variables
//
// Nested sections map to underscore-joined names:
//
//	RATINGPREP_LOGGING_LEVEL=debug
//	RATINGPREP_PATHS_OUTPUT_DIR=/tmp/out
//	RATINGPREP_LOADER_DELIMITER=";"
//	RATINGPREP_LOADER_MISSING_TOKENS="NA,?"
//	RATINGPREP_CLEANING_RATING_MIN=0.5
//	RATINGPREP_REPORT_WRITE_XLSX=false
//	RATINGPREP_TELEMETRY_TRACE_EXPORTER=stdout
//
// RATINGPREP_CONFIG names the YAML file when no explicit path is given.
// Otherwise ratingprep.yaml and configs/ratingprep.yaml are tried in order.
//
// # Path Management
//
// Paths resolves every artifact location for a run against the working
// directory:
//
//	paths, err := config.GetPaths(cfg)
//	csvPath := paths.CleanedCSV
package config
