package exporter

import (
	"context"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"ratingprep/internal/config"
	"ratingprep/internal/errors"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

// ArtifactKind names one output file of a run
type ArtifactKind string

const (
	ArtifactCleanedCSV  ArtifactKind = "cleaned_csv"
	ArtifactSummaryJSON ArtifactKind = "summary_json"
	ArtifactReportXLSX  ArtifactKind = "report_xlsx"
	ArtifactManifest    ArtifactKind = "manifest"
)

// Artifact is one file written by the Exporter
type Artifact struct {
	Kind  ArtifactKind `json:"kind"`
	Path  string       `json:"path"`
	Bytes int64        `json:"bytes"`
}

// Options selects the artifacts to write. An empty path disables that artifact.
type Options struct {
	CleanedCSV  string
	SummaryJSON string
	ReportXLSX  string

	// CSV controls the layout of the cleaned CSV
	CSV WriteOptions
}

// OptionsFromConfig resolves enabled artifacts against the run paths
func OptionsFromConfig(cfg config.ReportConfig, paths *config.Paths) Options {
	opts := Options{CSV: WriteOptions{BOMPrefix: cfg.CSVBOM}}
	if d := []rune(cfg.CSVDelimiter); len(d) == 1 {
		opts.CSV.Delimiter = d[0]
	}
	if cfg.WriteCSV {
		opts.CleanedCSV = paths.CleanedCSV
	}
	if cfg.WriteJSON {
		opts.SummaryJSON = paths.SummaryJSON
	}
	if cfg.WriteXLSX {
		opts.ReportXLSX = paths.ReportXLSX
	}
	return opts
}

// Exporter writes the cleaned table and its summary
type Exporter struct {
	logger   *slog.Logger
	csv      *CSVWriter
	workbook *WorkbookWriter
	opts     Options
}

// NewExporter creates an Exporter writing the artifacts enabled in opts
func NewExporter(logger *slog.Logger, opts Options) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "exporter")
	return &Exporter{
		logger:   logger,
		csv:      NewCSVWriter(logger),
		workbook: NewWorkbookWriter(logger),
		opts:     opts,
	}
}

// Export writes every enabled artifact concurrently. The artifacts are
// independent files, so one failure does not roll back the others; the first
// error is returned as a STORAGE error. Artifacts are returned sorted by kind.
func (e *Exporter) Export(ctx context.Context, t *table.Table, summary *domain.RatingsSummary) ([]Artifact, error) {
	type job struct {
		kind  ArtifactKind
		path  string
		write func(context.Context, string) error
	}

	jobs := []job{
		{ArtifactCleanedCSV, e.opts.CleanedCSV, func(ctx context.Context, p string) error {
			return e.csv.WriteTable(ctx, p, t, e.opts.CSV)
		}},
		{ArtifactSummaryJSON, e.opts.SummaryJSON, func(_ context.Context, p string) error {
			return WriteJSON(p, summary)
		}},
		{ArtifactReportXLSX, e.opts.ReportXLSX, func(ctx context.Context, p string) error {
			return e.workbook.WriteSummary(ctx, p, summary)
		}},
	}

	results := make([]Artifact, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		if j.path == "" {
			continue
		}
		g.Go(func() error {
			if err := j.write(gctx, j.path); err != nil {
				return errors.NewStorageError("write "+string(j.kind), err).
					WithContext("path", j.path)
			}
			results[i] = Artifact{Kind: j.kind, Path: j.path, Bytes: fileSize(j.path)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.ErrorContext(ctx, "Artifact export failed", slog.String("error", err.Error()))
		return nil, err
	}

	var artifacts []Artifact
	for _, a := range results {
		if a.Path != "" {
			artifacts = append(artifacts, a)
		}
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Kind < artifacts[j].Kind })

	e.logger.InfoContext(ctx, "Artifacts exported", slog.Int("count", len(artifacts)))
	return artifacts, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
