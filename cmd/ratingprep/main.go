package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"ratingprep/internal/config"
	"ratingprep/internal/files"
	"ratingprep/internal/infrastructure"
	"ratingprep/internal/operations"
	"ratingprep/internal/validation"
	"ratingprep/pkg/contracts"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one pipeline run and returns the process exit code. The run
// summary is printed to stdout; logs go to stderr and the configured log file.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	startTime := time.Now()

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	inPath := fs.String("in", "", "ratings file to process (csv, tsv or xlsx), or a directory to take the newest one from; may also be given as the first argument")
	configPath := fs.String("config", "", "YAML configuration file (defaults to ratingprep.yaml or configs/ratingprep.yaml)")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	if *inPath == "" && fs.NArg() > 0 {
		*inPath = fs.Arg(0)
	}
	if *inPath == "" {
		fmt.Fprintln(stderr, "usage: ratingprep [-config file] -in ratings.csv")
		fs.PrintDefaults()
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ratingprep: %v\n", err)
		return exitUsage
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "ratingprep: %v\n", err)
		return exitFailure
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "ratingprep: failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer infrastructure.CloseLogFile()

	if err := paths.EnsureDirectories(); err != nil {
		logger.ErrorContext(ctx, "Failed to create required directories", slog.String("error", err.Error()))
		return exitFailure
	}
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(paths.OutputDir); err != nil {
		logger.ErrorContext(ctx, "Output directory is not writable", slog.String("error", err.Error()))
		return exitFailure
	}

	providers, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, paths, contracts.Version), logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.WarnContext(shutdownCtx, "Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create tracer", slog.String("error", err.Error()))
		return exitFailure
	}
	systemMetrics, err := infrastructure.NewSystemMetrics(providers.Meter)
	if err != nil {
		logger.WarnContext(ctx, "System metrics unavailable", slog.String("error", err.Error()))
	}

	input, err := files.NewDiscovery(paths.BaseDir).ResolveInput(*inPath)
	if err != nil {
		logger.ErrorContext(ctx, "No input to process", slog.String("error", err.Error()))
		return exitFailure
	}
	if input != *inPath {
		logger.InfoContext(ctx, "Resolved input directory",
			slog.String("directory", *inPath),
			slog.String("input", input))
	}

	opCfg := operations.ConfigFromApp(cfg, paths)
	registry, err := operations.NewPipelineRegistry(logger, opCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build pipeline", slog.String("error", err.Error()))
		return exitFailure
	}
	manager := operations.NewManager(logger, registry, opCfg, tracer)

	logger.InfoContext(ctx, "Starting ratings preparation",
		slog.String("version", contracts.GetVersionString()),
		slog.String("input", input),
		slog.String("output_dir", paths.OutputDir))

	resp, runErr := manager.Execute(ctx, operations.OperationRequest{InputPath: input})

	stats := systemMetrics.Collect(ctx, startTime)
	logger.DebugContext(ctx, "Process statistics", slog.Any("system", stats))

	if err := providers.WriteMetricsFile(paths.MetricsFile); err != nil {
		logger.WarnContext(ctx, "Failed to write metrics file", slog.String("error", err.Error()))
	}

	printSummary(stdout, resp)

	if runErr != nil {
		infrastructure.WithError(logger, runErr).ErrorContext(ctx, "Run failed",
			slog.String("run_id", resp.ID),
			slog.String("failed_step", operations.FailedStep(runErr)))
		return exitFailure
	}
	return exitOK
}

// printSummary writes a short human-readable account of the run
func printSummary(w io.Writer, resp *operations.OperationResponse) {
	fmt.Fprintf(w, "run %s: %s in %s\n", resp.ID, resp.Status, resp.Duration.Round(time.Millisecond))
	for _, s := range resp.Steps {
		line := fmt.Sprintf("  %-10s %-9s %d -> %d rows", s.ID, s.Status, s.RowsIn, s.RowsOut)
		if s.Message != "" {
			line += " (" + s.Message + ")"
		}
		fmt.Fprintln(w, line)
	}
	kinds := make([]string, 0, len(resp.Diagnostics))
	for kind := range resp.Diagnostics {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "  warning %s x%d\n", kind, resp.Diagnostics[kind])
	}
	for _, a := range resp.Artifacts {
		fmt.Fprintf(w, "  wrote %s %s (%d bytes)\n", a.Kind, a.Path, a.Bytes)
	}
}
