package table

// Row is a positional view across all columns of a Table
type Row struct {
	table *Table
	index int
}

// Index returns the row position in its Table
func (r Row) Index() int { return r.index }

// IsNull reports whether the named column is missing in this row.
// An absent column counts as missing.
func (r Row) IsNull(name string) bool {
	col, err := r.table.Column(name)
	if err != nil {
		return true
	}
	return col.IsNull(r.index)
}

// Float returns the numeric value of the named column in this row
func (r Row) Float(name string) (float64, error) {
	col, err := r.table.NumericColumn(name)
	if err != nil {
		return 0, err
	}
	return col.Float(r.index), nil
}

// Int returns the integer value of the named column in this row
func (r Row) Int(name string) (int64, error) {
	col, err := r.table.IntColumn(name)
	if err != nil {
		return 0, err
	}
	return col.Int(r.index), nil
}

// Values returns the formatted values of this row in column order
func (r Row) Values() []string {
	out := make([]string, len(r.table.columns))
	for i, col := range r.table.columns {
		out[i] = col.Format(r.index)
	}
	return out
}
