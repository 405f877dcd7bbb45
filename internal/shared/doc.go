// Package shared holds code used across ratingprep packages that belongs to no
// single stage.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs
//   - RatingsTable and RatingsCSV fixtures for stage tests
//   - WriteFile for temp-dir input files
package shared
