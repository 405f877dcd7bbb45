package table

import (
	"math"
	"strconv"
	"time"
)

// Kind identifies the value type stored in a Column
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindTime
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Numeric reports whether values of this kind take part in numeric statistics
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Column is an immutable, homogeneously typed sequence of values with a null mask.
// Time columns also keep the raw epoch-seconds integer of every row and a
// per-row conversion-failure marker.
type Column struct {
	name    string
	kind    Kind
	ints    []int64
	floats  []float64
	strings []string
	times   []time.Time
	failed  []bool
	null    []bool
}

// NewIntColumn builds an integer column. A nil null mask means no missing values.
func NewIntColumn(name string, values []int64, null []bool) *Column {
	return &Column{name: name, kind: KindInt, ints: values, null: normalizeMask(null, len(values))}
}

// NewFloatColumn builds a float column. NaN values are treated as missing.
func NewFloatColumn(name string, values []float64, null []bool) *Column {
	mask := normalizeMask(null, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			mask[i] = true
		}
	}
	return &Column{name: name, kind: KindFloat, floats: values, null: mask}
}

// NewStringColumn builds a string column
func NewStringColumn(name string, values []string, null []bool) *Column {
	return &Column{name: name, kind: KindString, strings: values, null: normalizeMask(null, len(values))}
}

// NewTimeColumn builds a datetime column. raw holds the source epoch seconds and
// failed marks rows whose raw value could not be converted.
func NewTimeColumn(name string, values []time.Time, raw []int64, failed []bool, null []bool) *Column {
	return &Column{
		name:   name,
		kind:   KindTime,
		times:  values,
		ints:   raw,
		failed: normalizeMask(failed, len(values)),
		null:   normalizeMask(null, len(values)),
	}
}

func normalizeMask(mask []bool, n int) []bool {
	out := make([]bool, n)
	copy(out, mask)
	return out
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column kind
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of values in the column
func (c *Column) Len() int { return len(c.null) }

// IsNull reports whether row i is missing
func (c *Column) IsNull(i int) bool { return c.null[i] }

// NullCount returns the number of missing values
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

// Int returns the integer value at row i. For time columns this is the raw epoch value.
func (c *Column) Int(i int) int64 { return c.ints[i] }

// Float returns the value at row i as float64 for numeric columns
func (c *Column) Float(i int) float64 {
	if c.kind == KindInt {
		return float64(c.ints[i])
	}
	return c.floats[i]
}

// Str returns the string value at row i
func (c *Column) Str(i int) string { return c.strings[i] }

// Time returns the converted datetime at row i
func (c *Column) Time(i int) time.Time { return c.times[i] }

// ConversionFailed reports whether row i of a time column kept its raw value
// because conversion failed
func (c *Column) ConversionFailed(i int) bool {
	if c.kind != KindTime {
		return false
	}
	return c.failed[i]
}

// NumericValues returns the non-missing values of a numeric column in row order
func (c *Column) NumericValues() []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if !c.null[i] {
			out = append(out, c.Float(i))
		}
	}
	return out
}

// Format renders row i the way it is written to delimited output.
// Missing values render as the empty string.
func (c *Column) Format(i int) string {
	if c.null[i] {
		return ""
	}
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.ints[i], 10)
	case KindFloat:
		return strconv.FormatFloat(c.floats[i], 'f', -1, 64)
	case KindString:
		return c.strings[i]
	case KindTime:
		if c.failed[i] {
			return strconv.FormatInt(c.ints[i], 10)
		}
		return c.times[i].Format(time.DateTime)
	}
	return ""
}

// Rename returns a copy of the column under a different name sharing the same storage
func (c *Column) Rename(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

// take builds a new column containing rows at the given indices in order
func (c *Column) take(indices []int) *Column {
	out := &Column{name: c.name, kind: c.kind, null: make([]bool, len(indices))}
	switch c.kind {
	case KindInt:
		out.ints = make([]int64, len(indices))
	case KindFloat:
		out.floats = make([]float64, len(indices))
	case KindString:
		out.strings = make([]string, len(indices))
	case KindTime:
		out.times = make([]time.Time, len(indices))
		out.ints = make([]int64, len(indices))
		out.failed = make([]bool, len(indices))
	}
	for j, i := range indices {
		out.null[j] = c.null[i]
		switch c.kind {
		case KindInt:
			out.ints[j] = c.ints[i]
		case KindFloat:
			out.floats[j] = c.floats[i]
		case KindString:
			out.strings[j] = c.strings[i]
		case KindTime:
			out.times[j] = c.times[i]
			out.ints[j] = c.ints[i]
			out.failed[j] = c.failed[i]
		}
	}
	return out
}

// appendKey appends an exact, kind-tagged encoding of row i to buf.
// Two rows are duplicates when their keys over all columns are equal.
func (c *Column) appendKey(buf []byte, i int) []byte {
	if c.null[i] {
		return append(buf, 0x00)
	}
	buf = append(buf, 0x01)
	switch c.kind {
	case KindInt:
		buf = strconv.AppendInt(buf, c.ints[i], 10)
	case KindFloat:
		v := c.floats[i]
		if v == 0 {
			v = 0 // fold -0 into +0
		}
		buf = strconv.AppendUint(buf, math.Float64bits(v), 16)
	case KindString:
		buf = strconv.AppendInt(buf, int64(len(c.strings[i])), 10)
		buf = append(buf, ':')
		buf = append(buf, c.strings[i]...)
	case KindTime:
		if c.failed[i] {
			buf = append(buf, '!')
		}
		buf = strconv.AppendInt(buf, c.ints[i], 10)
	}
	return append(buf, 0x1f)
}

// equalAt compares row i of c with row j of other
func (c *Column) equalAt(i int, other *Column, j int) bool {
	if c.null[i] != other.null[j] {
		return false
	}
	if c.null[i] {
		return true
	}
	switch c.kind {
	case KindInt:
		return c.ints[i] == other.ints[j]
	case KindFloat:
		return c.floats[i] == other.floats[j]
	case KindString:
		return c.strings[i] == other.strings[j]
	case KindTime:
		return c.failed[i] == other.failed[j] && c.ints[i] == other.ints[j] && c.times[i].Equal(other.times[j])
	}
	return false
}
