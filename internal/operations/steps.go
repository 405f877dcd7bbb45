package operations

import (
	"context"
	"fmt"
	"log/slog"

	"ratingprep/internal/dataprocessing"
	"ratingprep/internal/exporter"
	"ratingprep/internal/table"
	"ratingprep/internal/validation"
)

// LoadStep reads the input file into a Table
type LoadStep struct {
	BaseStage
	loader    *dataprocessing.Loader
	validator *validation.FileValidator
}

// NewLoadStep creates the load step
func NewLoadStep(logger *slog.Logger, opts dataprocessing.LoaderOptions) *LoadStep {
	return &LoadStep{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad, nil),
		loader:    dataprocessing.NewLoader(logger, opts),
		validator: validation.NewFileValidator(logger),
	}
}

// Validate requires an input path
func (s *LoadStep) Validate(state *OperationState) error {
	if state.InputPath == "" {
		return fmt.Errorf("no input path given")
	}
	return nil
}

// Execute loads the input and stores the Table and LoadReport
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	if err := s.validator.ValidateInputFile(state.InputPath); err != nil {
		return err
	}

	t, report, err := s.loader.Load(ctx, state.InputPath)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyTable, t)
	state.SetContext(ContextKeyLoadReport, report)
	state.GetStage(s.ID()).SetRows(t.RowCount()+report.MalformedLines, t.RowCount())
	return nil
}

// CleanStep removes unusable rows and fills missing values
type CleanStep struct {
	BaseStage
	cleaner *dataprocessing.Cleaner
}

// NewCleanStep creates the clean step
func NewCleanStep(logger *slog.Logger, cfg *Config) *CleanStep {
	return &CleanStep{
		BaseStage: NewBaseStage(StepIDClean, StepNameClean, []string{StepIDLoad}),
		cleaner:   dataprocessing.NewCleaner(logger, cfg.Scale),
	}
}

// Validate requires a loaded Table
func (s *CleanStep) Validate(state *OperationState) error {
	_, err := tableFromState(state)
	return err
}

// Execute cleans the current Table
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	in, err := tableFromState(state)
	if err != nil {
		return err
	}

	out, report, err := s.cleaner.Clean(ctx, in)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyTable, out)
	state.SetContext(ContextKeyCleanReport, report)
	state.Diagnostics.Add(report.Warnings...)
	state.GetStage(s.ID()).SetRows(report.RowsIn, report.RowsOut)
	return nil
}

// SelectStep keeps the canonical feature columns
type SelectStep struct {
	BaseStage
	selector *dataprocessing.Selector
}

// NewSelectStep creates the select step
func NewSelectStep(logger *slog.Logger) *SelectStep {
	return &SelectStep{
		BaseStage: NewBaseStage(StepIDSelect, StepNameSelect, []string{StepIDClean}),
		selector:  dataprocessing.NewSelector(logger),
	}
}

// Validate requires a cleaned Table
func (s *SelectStep) Validate(state *OperationState) error {
	_, err := tableFromState(state)
	return err
}

// Execute projects the current Table onto the feature columns
func (s *SelectStep) Execute(ctx context.Context, state *OperationState) error {
	in, err := tableFromState(state)
	if err != nil {
		return err
	}

	out, err := s.selector.Select(ctx, in)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyTable, out)
	state.GetStage(s.ID()).SetRows(in.RowCount(), out.RowCount())
	return nil
}

// TransformStep normalizes ratings and converts timestamps
type TransformStep struct {
	BaseStage
	transformer *dataprocessing.Transformer
}

// NewTransformStep creates the transform step
func NewTransformStep(logger *slog.Logger) *TransformStep {
	return &TransformStep{
		BaseStage:   NewBaseStage(StepIDTransform, StepNameTransform, []string{StepIDSelect}),
		transformer: dataprocessing.NewTransformer(logger),
	}
}

// Validate requires a selected Table
func (s *TransformStep) Validate(state *OperationState) error {
	_, err := tableFromState(state)
	return err
}

// Execute transforms the current Table
func (s *TransformStep) Execute(ctx context.Context, state *OperationState) error {
	in, err := tableFromState(state)
	if err != nil {
		return err
	}

	out, report, err := s.transformer.Transform(ctx, in)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyTable, out)
	state.SetContext(ContextKeyTransformReport, report)
	state.Diagnostics.Add(report.Warnings...)
	state.GetStage(s.ID()).SetRows(in.RowCount(), out.RowCount())
	return nil
}

// ReportStep summarizes the final Table and writes the artifacts
type ReportStep struct {
	BaseStage
	summarizer *dataprocessing.Summarizer
	exporter   *exporter.Exporter
}

// NewReportStep creates the report step
func NewReportStep(logger *slog.Logger, cfg *Config) *ReportStep {
	return &ReportStep{
		BaseStage:  NewBaseStage(StepIDReport, StepNameReport, []string{StepIDTransform}),
		summarizer: dataprocessing.NewSummarizer(logger, cfg.Summarizer),
		exporter:   exporter.NewExporter(logger, cfg.Export),
	}
}

// Validate requires a transformed Table
func (s *ReportStep) Validate(state *OperationState) error {
	_, err := tableFromState(state)
	return err
}

// Execute computes the summary and writes the enabled artifacts
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	final, err := tableFromState(state)
	if err != nil {
		return err
	}

	summary, err := s.summarizer.Summarize(ctx, final)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeySummary, summary)

	artifacts, err := s.exporter.Export(ctx, final, summary)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyArtifacts, artifacts)
	state.GetStage(s.ID()).SetRows(final.RowCount(), final.RowCount())
	return nil
}

// NewPipelineSteps returns the load, clean, select, transform and report steps
func NewPipelineSteps(logger *slog.Logger, cfg *Config) []Step {
	if cfg == nil {
		cfg = NewConfig()
	}
	return []Step{
		NewLoadStep(logger, cfg.Loader),
		NewCleanStep(logger, cfg),
		NewSelectStep(logger),
		NewTransformStep(logger),
		NewReportStep(logger, cfg),
	}
}

// NewPipelineRegistry returns a Registry holding the pipeline steps
func NewPipelineRegistry(logger *slog.Logger, cfg *Config) (*Registry, error) {
	registry := NewRegistry()
	for _, step := range NewPipelineSteps(logger, cfg) {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	if err := registry.ValidateDependencies(); err != nil {
		return nil, err
	}
	return registry, nil
}

func tableFromState(state *OperationState) (*table.Table, error) {
	v, ok := state.GetContext(ContextKeyTable)
	if !ok {
		return nil, fmt.Errorf("no table in operation context")
	}
	t, ok := v.(*table.Table)
	if !ok || t == nil {
		return nil, fmt.Errorf("operation context %q holds %T, not a table", ContextKeyTable, v)
	}
	return t, nil
}
