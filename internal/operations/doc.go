// Package operations runs the ratings pipeline as an ordered set of steps.
//
// Core Components:
//
// Manager: runs the registered steps sequentially in dependency order, records
// the outcome of each, and writes the run manifest. A failing step stops the
// run and the steps after it are reported as skipped. Cancellation of the
// context is observed between steps.
//
// Step: one unit of work. The pipeline steps are load, clean, select,
// transform and report; each reads the current Table from the OperationState
// context and replaces it with its output.
//
// Registry: holds the steps and orders them by their dependencies.
//
// RunManifest: the JSON record of a run. It carries the input digest, step
// timings and row counts, stage reports, diagnostic counts and the artifacts
// written.
//
// Example usage:
//
//	registry, err := operations.NewPipelineRegistry(logger, operations.ConfigFromApp(cfg, paths))
//	if err != nil {
//		return err
//	}
//	manager := operations.NewManager(logger, registry, operations.ConfigFromApp(cfg, paths), tracer)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{InputPath: "ratings.csv"})
package operations
