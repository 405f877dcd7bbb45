package dataprocessing

import (
	"context"
	"log/slog"

	"ratingprep/internal/errors"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

// Processor chains the core stages Clean, Select and Transform over an
// in-memory Table, for callers that do not need per-step orchestration.
type Processor struct {
	cleaner     *Cleaner
	selector    *Selector
	transformer *Transformer
}

// ProcessResult is the output of one Processor run
type ProcessResult struct {
	Table       *table.Table
	Clean       *CleanReport
	Transform   *TransformReport
	Diagnostics *errors.Collector
}

// NewProcessor creates a Processor for the given rating scale
func NewProcessor(logger *slog.Logger, scale domain.RatingScale) *Processor {
	return &Processor{
		cleaner:     NewCleaner(logger, scale),
		selector:    NewSelector(logger),
		transformer: NewTransformer(logger),
	}
}

// Process runs the core stages in order. The first fatal error stops the chain;
// warnings from every completed stage are gathered in the result's Collector.
func (p *Processor) Process(ctx context.Context, t *table.Table) (*ProcessResult, error) {
	res := &ProcessResult{Diagnostics: errors.NewCollector()}

	cleaned, cleanReport, err := p.cleaner.Clean(ctx, t)
	if err != nil {
		return nil, err
	}
	res.Clean = cleanReport
	res.Diagnostics.Add(cleanReport.Warnings...)

	selected, err := p.selector.Select(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	transformed, transformReport, err := p.transformer.Transform(ctx, selected)
	if err != nil {
		return nil, err
	}
	res.Transform = transformReport
	res.Diagnostics.Add(transformReport.Warnings...)

	res.Table = transformed
	return res, nil
}
