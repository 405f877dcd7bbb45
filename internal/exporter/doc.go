// Package exporter writes the artifacts of a ratings run.
//
// CSVWriter streams the final table to delimited text. WorkbookWriter renders
// the summary as an Excel workbook with excelize. WriteJSON encodes summary and
// manifest documents atomically. Exporter ties them together and writes the
// enabled artifacts concurrently:
//
//	exp := exporter.NewExporter(logger, exporter.OptionsFromConfig(cfg.Report, paths))
//	artifacts, err := exp.Export(ctx, final, summary)
package exporter
