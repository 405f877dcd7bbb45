package operations

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"ratingprep/internal/dataprocessing"
	"ratingprep/internal/exporter"
	"ratingprep/pkg/contracts"
)

// InputInfo identifies the file a run read
type InputInfo struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	BLAKE2b   string `json:"blake2b_256,omitempty"`
}

// StepExecution tracks the execution of a single step
type StepExecution struct {
	StepID    string     `json:"step_id"`
	StepName  string     `json:"step_name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  string     `json:"duration"`
	RowsIn    int        `json:"rows_in"`
	RowsOut   int        `json:"rows_out"`
	Message   string     `json:"message,omitempty"`
}

// RunManifest is the record of one pipeline run written next to its artifacts
type RunManifest struct {
	mu sync.RWMutex

	// Identity
	RunID          string `json:"run_id"`
	Version        string `json:"version"`
	ManifestFormat string `json:"manifest_format"`

	Input InputInfo `json:"input"`

	// Current status
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Duration  string               `json:"duration"`
	Error     string               `json:"error,omitempty"`
	FailedAt  string               `json:"failed_step,omitempty"`

	// Execution tracking
	Steps []StepExecution `json:"steps"`

	// Stage reports
	Loader    *dataprocessing.LoadReport      `json:"loader,omitempty"`
	Cleaning  *dataprocessing.CleanReport     `json:"cleaning,omitempty"`
	Transform *dataprocessing.TransformReport `json:"transform,omitempty"`

	Diagnostics map[string]int      `json:"diagnostics"`
	Artifacts   []exporter.Artifact `json:"artifacts"`
}

// NewRunManifest creates a new run manifest
func NewRunManifest(runID, inputPath string) *RunManifest {
	return &RunManifest{
		RunID:          runID,
		Version:        contracts.Version,
		ManifestFormat: contracts.ManifestFormatVersion,
		Input:          InputInfo{Path: inputPath},
		Status:         OperationStatusPending,
		StartTime:      time.Now(),
		Steps:          []StepExecution{},
		Diagnostics:    map[string]int{},
		Artifacts:      []exporter.Artifact{},
	}
}

// DigestFile returns the hex BLAKE2b-256 digest and size of the file at path
func DigestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// RecordInputDigest fills in the input size and digest
func (m *RunManifest) RecordInputDigest(digest string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Input.BLAKE2b = digest
	m.Input.SizeBytes = size
}

// AddArtifact records a written artifact
func (m *RunManifest) AddArtifact(a exporter.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Artifacts = append(m.Artifacts, a)
}

// Finish copies the final run state into the manifest
func (m *RunManifest) Finish(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Status = state.GetStatus()
	m.StartTime = state.StartTime
	m.EndTime = time.Now()
	if state.EndTime != nil {
		m.EndTime = *state.EndTime
	}
	m.Duration = m.EndTime.Sub(m.StartTime).String()
	if state.Error != nil {
		m.Error = state.Error.Error()
		m.FailedAt = FailedStep(state.Error)
	}

	m.Steps = m.Steps[:0]
	for _, step := range state.OrderedStages() {
		step.mu.RLock()
		m.Steps = append(m.Steps, StepExecution{
			StepID:    step.ID,
			StepName:  step.Name,
			Status:    step.Status,
			StartTime: step.StartTime,
			EndTime:   step.EndTime,
			RowsIn:    step.RowsIn,
			RowsOut:   step.RowsOut,
			Message:   step.Message,
		})
		step.mu.RUnlock()
		m.Steps[len(m.Steps)-1].Duration = step.Duration().String()
	}

	if v, ok := state.GetContext(ContextKeyLoadReport); ok {
		m.Loader, _ = v.(*dataprocessing.LoadReport)
	}
	if v, ok := state.GetContext(ContextKeyCleanReport); ok {
		m.Cleaning, _ = v.(*dataprocessing.CleanReport)
	}
	if v, ok := state.GetContext(ContextKeyTransformReport); ok {
		m.Transform, _ = v.(*dataprocessing.TransformReport)
	}
	m.Diagnostics = state.DiagnosticCounts()
}

// SaveToFile saves the manifest as JSON
func (m *RunManifest) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := exporter.WriteJSON(path, m); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}
