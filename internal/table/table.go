// Package table provides the in-memory, column-oriented Table that flows through
// the preparation stages. Tables and their columns are immutable: every operation
// returns a new Table, and columns may be shared between Tables.
package table

import (
	"fmt"
)

// Table is an ordered set of named, equally long columns
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a Table from columns. It fails with a SchemaError when a name
// repeats or when columns disagree on length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, exists := t.index[col.Name()]; exists {
			return nil, &SchemaError{Column: col.Name(), Err: ErrDuplicateColumn}
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, &SchemaError{
				Column: col.Name(),
				Err:    ErrLengthMismatch,
				Reason: fmt.Sprintf("has %d rows, table has %d", col.Len(), t.rows),
			}
		}
		t.index[col.Name()] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name()
	}
	return names
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// RowCount returns the number of rows
func (t *Table) RowCount() int { return t.rows }

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int { return len(t.columns) }

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or a SchemaError if it is absent
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, missingColumn(name)
	}
	return t.columns[i], nil
}

// NumericColumn returns the named column if it holds int or float values
func (t *Table) NumericColumn(name string) (*Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !col.Kind().Numeric() {
		return nil, wrongKind(name, col.Kind(), "numeric")
	}
	return col, nil
}

// IntColumn returns the named column if it holds int values
func (t *Table) IntColumn(name string) (*Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind() != KindInt {
		return nil, wrongKind(name, col.Kind(), KindInt.String())
	}
	return col, nil
}

// Row returns a positional view of row i
func (t *Table) Row(i int) Row {
	return Row{table: t, index: i}
}

// Filter returns a new Table with the rows matching pred, in original order
func (t *Table) Filter(pred func(Row) bool) *Table {
	keep := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if pred(t.Row(i)) {
			keep = append(keep, i)
		}
	}
	return t.Take(keep)
}

// DropRows returns a new Table without the given row indices.
// Out-of-range indices are ignored.
func (t *Table) DropRows(indices []int) *Table {
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		drop[i] = struct{}{}
	}
	keep := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if _, skip := drop[i]; !skip {
			keep = append(keep, i)
		}
	}
	return t.Take(keep)
}

// Take returns a new Table containing the given rows in the given order
func (t *Table) Take(indices []int) *Table {
	out := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   t.index,
		rows:    len(indices),
	}
	for i, col := range t.columns {
		out.columns[i] = col.take(indices)
	}
	return out
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, t.rows))
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return t.Take(indices)
}

// WithColumn returns a new Table with col added at the end, or replacing the
// existing column of the same name in place
func (t *Table) WithColumn(col *Column) (*Table, error) {
	if len(t.columns) > 0 && col.Len() != t.rows {
		return nil, &SchemaError{
			Column: col.Name(),
			Err:    ErrLengthMismatch,
			Reason: fmt.Sprintf("has %d rows, table has %d", col.Len(), t.rows),
		}
	}
	columns := t.Columns()
	if i, ok := t.index[col.Name()]; ok {
		columns[i] = col
	} else {
		columns = append(columns, col)
	}
	return New(columns...)
}

// Select returns a new Table with only the named columns, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	columns := make([]*Column, 0, len(names))
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	out, err := New(columns...)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// MissingCounts returns the number of missing values per column
func (t *Table) MissingCounts() map[string]int {
	counts := make(map[string]int, len(t.columns))
	for _, col := range t.columns {
		counts[col.Name()] = col.NullCount()
	}
	return counts
}

// RowKey returns an exact encoding of all values in row i
func (t *Table) RowKey(i int) string {
	buf := make([]byte, 0, 16*len(t.columns))
	for _, col := range t.columns {
		buf = col.appendKey(buf, i)
	}
	return string(buf)
}

// Equal reports whether both Tables have the same columns, kinds and values
func (t *Table) Equal(other *Table) bool {
	if other == nil || t.rows != other.rows || len(t.columns) != len(other.columns) {
		return false
	}
	for c, col := range t.columns {
		oc := other.columns[c]
		if col.Name() != oc.Name() || col.Kind() != oc.Kind() {
			return false
		}
		for i := 0; i < t.rows; i++ {
			if !col.equalAt(i, oc, i) {
				return false
			}
		}
	}
	return true
}

// Records renders the Table as string rows for delimited output
func (t *Table) Records() [][]string {
	records := make([][]string, t.rows)
	for i := 0; i < t.rows; i++ {
		record := make([]string, len(t.columns))
		for c, col := range t.columns {
			record[c] = col.Format(i)
		}
		records[i] = record
	}
	return records
}
