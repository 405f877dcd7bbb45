package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"

	"ratingprep/internal/errors"
	"ratingprep/internal/table"
	"ratingprep/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads a ratings source into a Table. Lines that cannot be tokenized are
// skipped and counted rather than aborting the load.
type Loader struct {
	logger  *slog.Logger
	opts    LoaderOptions
	missing map[string]struct{}
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger, opts LoaderOptions) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	missing := make(map[string]struct{}, len(opts.MissingTokens))
	for _, tok := range opts.MissingTokens {
		missing[tok] = struct{}{}
	}
	return &Loader{
		logger:  logger.With("component", "loader"),
		opts:    opts,
		missing: missing,
	}
}

// Load reads the file at path. Workbooks (.xlsx, .xlsm) are read with excelize;
// everything else is treated as delimited text.
func (l *Loader) Load(ctx context.Context, path string) (*table.Table, *LoadReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NewSourceNotFoundError(path, err)
		}
		return nil, nil, errors.NewSourceParseError("stat input "+path, err)
	}
	if info.IsDir() {
		return nil, nil, errors.NewSourceNotFoundError(path, fmt.Errorf("%s is a directory", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		return l.loadWorkbook(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewSourceParseError("open input "+path, err)
	}
	defer f.Close()

	delim := l.opts.Delimiter
	if ext == ".tsv" {
		delim = '\t'
	}
	return l.loadDelimited(ctx, f, path, delim)
}

// LoadReader parses delimited text from r. source only labels logs and the report.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, source string) (*table.Table, *LoadReport, error) {
	return l.loadDelimited(ctx, r, source, l.opts.Delimiter)
}

func (l *Loader) loadDelimited(ctx context.Context, r io.Reader, source string, delim rune) (*table.Table, *LoadReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.NewSourceParseError("read input "+source, err)
	}

	report := &LoadReport{Source: source, Format: FormatDelimited, CoercedValues: map[string]int{}}
	data, report.Encoding, err = decodeText(data)
	if err != nil {
		return nil, nil, err
	}
	if report.Encoding != EncodingUTF8 {
		l.logger.WarnContext(ctx, "Input is not valid UTF-8, decoded as latin1",
			slog.String("source", source))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.NewSourceParseError(source+" is empty", nil)
	}
	if err != nil {
		return nil, nil, errors.NewSourceParseError("read header of "+source, err)
	}
	raw := newRawTable(header)

	progress := rate.Sometimes{Interval: l.opts.ProgressInterval}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				report.addMalformed(perr.StartLine)
				continue
			}
			return nil, nil, errors.NewSourceParseError("read "+source, err)
		}
		if len(record) != len(raw.header) {
			line, _ := reader.FieldPos(0)
			report.addMalformed(line)
			continue
		}
		raw.append(record)

		if l.opts.ProgressInterval > 0 {
			progress.Do(func() {
				l.logger.InfoContext(ctx, "Loading rows",
					slog.String("source", source),
					slog.Int("rows", raw.rows))
			})
		}
	}

	return l.finish(ctx, raw, report)
}

func (l *Loader) loadWorkbook(ctx context.Context, path string) (*table.Table, *LoadReport, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, errors.NewSourceParseError("open workbook "+path, err)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.NewSourceParseError("workbook "+path+" has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, nil, errors.NewSourceParseError(fmt.Sprintf("open sheet %q", sheet), err)
	}
	defer rows.Close()

	report := &LoadReport{
		Source:        path,
		Format:        FormatWorkbook,
		Encoding:      EncodingUTF8,
		Sheet:         sheet,
		CoercedValues: map[string]int{},
	}

	var raw *rawTable
	line := 0
	for rows.Next() {
		line++
		record, err := rows.Columns()
		if err != nil {
			report.addMalformed(line)
			continue
		}
		if isBlankRecord(record) {
			continue
		}
		if raw == nil {
			raw = newRawTable(record)
			continue
		}
		// Trailing empty cells are not stored, so short rows are padded
		if len(record) > len(raw.header) {
			if !isBlankRecord(record[len(raw.header):]) {
				report.addMalformed(line)
				continue
			}
			record = record[:len(raw.header)]
		}
		for len(record) < len(raw.header) {
			record = append(record, "")
		}
		raw.append(record)
	}
	if err := rows.Error(); err != nil {
		return nil, nil, errors.NewSourceParseError(fmt.Sprintf("read sheet %q", sheet), err)
	}
	if raw == nil {
		return nil, nil, errors.NewSourceParseError(fmt.Sprintf("sheet %q is empty", sheet), nil)
	}

	return l.finish(ctx, raw, report)
}

// finish types the raw cells and assembles the Table
func (l *Loader) finish(ctx context.Context, raw *rawTable, report *LoadReport) (*table.Table, *LoadReport, error) {
	if raw.rows == 0 && report.MalformedLines > 0 {
		return nil, nil, errors.NewSourceParseError(
			fmt.Sprintf("no line of %s could be tokenized (%d skipped)", report.Source, report.MalformedLines), nil)
	}

	columns := make([]*table.Column, len(raw.header))
	for i, name := range raw.header {
		col, coerced := l.buildColumn(name, raw.cells[i])
		columns[i] = col
		if coerced > 0 {
			report.CoercedValues[name] = coerced
		}
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, nil, errors.NewSourceParseError("assemble table from "+report.Source, err)
	}
	report.Rows = t.RowCount()
	report.Columns = t.ColumnNames()

	if report.MalformedLines > 0 {
		l.logger.WarnContext(ctx, "Skipped malformed lines",
			slog.String("source", report.Source),
			slog.Int("count", report.MalformedLines),
			slog.Any("sample_lines", report.MalformedSamples))
	}
	for name, n := range report.CoercedValues {
		l.logger.WarnContext(ctx, "Unparseable values read as missing",
			slog.String("column", name),
			slog.Int("count", n))
	}
	l.logger.InfoContext(ctx, "Input loaded",
		slog.String("source", report.Source),
		slog.String("format", report.Format),
		slog.String("encoding", report.Encoding),
		slog.Int("rows", report.Rows),
		slog.Int("columns", t.ColumnCount()))

	return t, report, nil
}

// buildColumn applies the fixed type of canonical columns and infers the rest
func (l *Loader) buildColumn(name string, cells []string) (*table.Column, int) {
	switch name {
	case domain.ColumnUserID, domain.ColumnMovieID, domain.ColumnTimestamp:
		return l.intColumn(name, cells)
	case domain.ColumnRating:
		return l.floatColumn(name, cells)
	}
	return l.inferColumn(name, cells)
}

func (l *Loader) intColumn(name string, cells []string) (*table.Column, int) {
	values := make([]int64, len(cells))
	null := make([]bool, len(cells))
	coerced := 0
	for i, cell := range cells {
		v := strings.TrimSpace(cell)
		if l.isMissing(v) {
			null[i] = true
			continue
		}
		n, ok := parseInteger(v)
		if !ok {
			null[i] = true
			coerced++
			continue
		}
		values[i] = n
	}
	return table.NewIntColumn(name, values, null), coerced
}

func (l *Loader) floatColumn(name string, cells []string) (*table.Column, int) {
	values := make([]float64, len(cells))
	null := make([]bool, len(cells))
	coerced := 0
	for i, cell := range cells {
		v := strings.TrimSpace(cell)
		if l.isMissing(v) {
			null[i] = true
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			null[i] = true
			coerced++
			continue
		}
		values[i] = f
	}
	return table.NewFloatColumn(name, values, null), coerced
}

// inferColumn yields a Float column when every present value is numeric, a
// String column otherwise
func (l *Loader) inferColumn(name string, cells []string) (*table.Column, int) {
	if col, coerced := l.floatColumn(name, cells); coerced == 0 {
		return col, 0
	}

	values := make([]string, len(cells))
	null := make([]bool, len(cells))
	for i, cell := range cells {
		if l.isMissing(strings.TrimSpace(cell)) {
			null[i] = true
			continue
		}
		values[i] = cell
	}
	return table.NewStringColumn(name, values, null), 0
}

func (l *Loader) isMissing(v string) bool {
	if v == "" {
		return true
	}
	_, ok := l.missing[v]
	return ok
}

// parseInteger accepts plain integers and integral floats such as "10.0"
func parseInteger(v string) (int64, bool) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// decodeText strips a UTF-8 BOM and falls back to latin1 for invalid UTF-8
func decodeText(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, EncodingUTF8, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", errors.NewSourceParseError("decode latin1 input", err)
	}
	return decoded, EncodingLatin1, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// rawTable holds untyped cells column by column
type rawTable struct {
	header []string
	cells  [][]string
	rows   int
}

// newRawTable normalizes header names: blanks become "Unnamed: i" and repeats get a ".n" suffix
func newRawTable(header []string) *rawTable {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names[i] = name
	}
	return &rawTable{header: names, cells: make([][]string, len(names))}
}

func (r *rawTable) append(record []string) {
	for i, v := range record {
		r.cells[i] = append(r.cells[i], v)
	}
	r.rows++
}
