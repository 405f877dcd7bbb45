package operations

import (
	"time"

	"ratingprep/internal/exporter"
)

// Pipeline step identifiers, in execution order
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDSelect    = "select"
	StepIDTransform = "transform"
	StepIDReport    = "report"
)

// Pipeline step names
const (
	StepNameLoad      = "Load Input"
	StepNameClean     = "Clean Ratings"
	StepNameSelect    = "Select Features"
	StepNameTransform = "Transform Features"
	StepNameReport    = "Report"
)

// Context keys for values passed between steps
const (
	ContextKeyTable           = "table"
	ContextKeyLoadReport      = "load_report"
	ContextKeyCleanReport     = "clean_report"
	ContextKeyTransformReport = "transform_report"
	ContextKeySummary         = "summary"
	ContextKeyArtifacts       = "artifacts"
)

// OperationRequest represents a request to execute the pipeline
type OperationRequest struct {
	// ID is the run ID; one is generated when empty
	ID        string `json:"id"`
	InputPath string `json:"input_path"`
}

// StepSummary is the reported outcome of one step
type StepSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Message  string        `json:"message,omitempty"`
}

// OperationResponse represents the response from a pipeline execution
type OperationResponse struct {
	ID          string               `json:"id"`
	Status      OperationStatusValue `json:"status"`
	Duration    time.Duration        `json:"duration"`
	Steps       []StepSummary        `json:"steps"`
	Diagnostics map[string]int       `json:"diagnostics"`
	Artifacts   []exporter.Artifact  `json:"artifacts"`
	Manifest    *RunManifest         `json:"-"`
	Error       string               `json:"error,omitempty"`
}
