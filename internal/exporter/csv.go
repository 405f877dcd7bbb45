package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ratingprep/internal/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	Delimiter rune // Defaults to ','
}

// WriteTable streams every row of t to filePath, header first. Missing values
// are written as empty fields and timestamps that failed conversion keep their
// raw epoch integer.
func (w *CSVWriter) WriteTable(ctx context.Context, filePath string, t *table.Table, options WriteOptions) error {
	sw, err := w.CreateStreamWriter(filePath, t.ColumnNames(), options)
	if err != nil {
		return err
	}

	for i := 0; i < t.RowCount(); i++ {
		if err := sw.WriteRecord(t.Row(i).Values()); err != nil {
			sw.Close()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filePath, err)
	}

	w.logger.InfoContext(ctx, "Table written",
		slog.String("file_path", filePath),
		slog.Int("rows", t.RowCount()),
		slog.Int("columns", t.ColumnCount()))
	return nil
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, options WriteOptions) (*StreamWriter, error) {
	w.logger.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := newWriter(file, options.Delimiter)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func newWriter(f *os.File, delimiter rune) *csv.Writer {
	writer := csv.NewWriter(f)
	if delimiter != 0 {
		writer.Comma = delimiter
	}
	return writer
}
