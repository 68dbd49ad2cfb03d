// Package frame provides the in-memory tabular container used by the cleaning
// operations: typed cell values, named columns over a stable row index, value
// counts, and CSV/Excel readers and writers.
package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when a column name is used twice.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrIndexNotFound is returned when a row index label does not exist.
	ErrIndexNotFound = errors.New("index label not found")

	// ErrLengthMismatch is returned when a series does not fit a table.
	ErrLengthMismatch = errors.New("length mismatch")
)

// Series is a named column of values over a row index.
type Series struct {
	Name   string
	Index  []int
	Values []Value
}

// NewSeries builds a series with a 0..n-1 index.
func NewSeries(name string, values []Value) *Series {
	return &Series{Name: name, Index: rangeIndex(len(values)), Values: values}
}

// Len returns the number of values.
func (s *Series) Len() int { return len(s.Values) }

// Copy returns a deep copy of s.
func (s *Series) Copy() *Series {
	return &Series{
		Name:   s.Name,
		Index:  append([]int(nil), s.Index...),
		Values: append([]Value(nil), s.Values...),
	}
}

// Map returns a new series with fn applied to every value.
func (s *Series) Map(fn func(Value) Value) *Series {
	out := s.Copy()
	for i, v := range out.Values {
		out.Values[i] = fn(v)
	}
	return out
}

// Texts returns the text form of every value.
func (s *Series) Texts() []string {
	out := make([]string, len(s.Values))
	for i, v := range s.Values {
		out[i] = v.Text()
	}
	return out
}

// Row is a read-only view of one table row keyed by column name.
type Row map[string]Value

// Table is an ordered set of uniquely named columns over a row index.
type Table struct {
	columns []string
	data    map[string][]Value
	index   []int
}

// New returns an empty table with the given columns.
func New(columns ...string) (*Table, error) {
	t := &Table{data: make(map[string][]Value, len(columns))}
	for _, c := range columns {
		if _, exists := t.data[c]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		t.columns = append(t.columns, c)
		t.data[c] = nil
	}
	return t, nil
}

// FromRecords builds a table from a header and rows of values. Short rows
// are padded with Missing; long rows fail.
func FromRecords(header []string, rows [][]Value) (*Table, error) {
	t, err := New(header...)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := t.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return t, nil
}

// FromSeries builds a table from series of equal length. The index of the
// first series is used.
func FromSeries(series ...*Series) (*Table, error) {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}
	t, err := New(names...)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return t, nil
	}
	n := series[0].Len()
	for _, s := range series {
		if s.Len() != n {
			return nil, fmt.Errorf("%w: series %q has %d values, want %d", ErrLengthMismatch, s.Name, s.Len(), n)
		}
		t.data[s.Name] = append([]Value(nil), s.Values...)
	}
	t.index = append([]int(nil), series[0].Index...)
	return t, nil
}

// AppendRow adds a row labelled with the next free index label.
func (t *Table) AppendRow(values ...Value) error {
	if len(values) > len(t.columns) {
		return fmt.Errorf("%w: %d values for %d columns", ErrLengthMismatch, len(values), len(t.columns))
	}
	for i, c := range t.columns {
		v := Missing()
		if i < len(values) {
			v = values[i]
		}
		t.data[c] = append(t.data[c], v)
	}
	next := 0
	if n := len(t.index); n > 0 {
		next = t.maxIndex() + 1
	}
	t.index = append(t.index, next)
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Index returns a copy of the row index.
func (t *Table) Index() []int { return append([]int(nil), t.index...) }

// Column returns a copy of the named column.
func (t *Table) Column(name string) (*Series, error) {
	vals, ok := t.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return &Series{
		Name:   name,
		Index:  append([]int(nil), t.index...),
		Values: append([]Value(nil), vals...),
	}, nil
}

// Value returns the value at row position pos in column name.
func (t *Table) Value(pos int, name string) (Value, error) {
	vals, ok := t.data[name]
	if !ok {
		return Missing(), fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if pos < 0 || pos >= len(vals) {
		return Missing(), fmt.Errorf("row position %d out of range", pos)
	}
	return vals[pos], nil
}

// SetColumn replaces the named column, or appends it when it does not exist.
// The series must have one value per row.
func (t *Table) SetColumn(name string, s *Series) error {
	if s.Len() != t.Len() && len(t.columns) > 0 {
		return fmt.Errorf("%w: series has %d values, table has %d rows", ErrLengthMismatch, s.Len(), t.Len())
	}
	if len(t.columns) == 0 {
		t.index = append([]int(nil), s.Index...)
	}
	if _, ok := t.data[name]; !ok {
		t.columns = append(t.columns, name)
	}
	t.data[name] = append([]Value(nil), s.Values...)
	return nil
}

// Rename renames columns according to mapping (old → new). Names missing
// from the table are ignored.
func (t *Table) Rename(mapping map[string]string) error {
	next := make([]string, len(t.columns))
	seen := make(map[string]bool, len(t.columns))
	for i, c := range t.columns {
		name := c
		if n, ok := mapping[c]; ok {
			name = n
		}
		if seen[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = true
		next[i] = name
	}
	data := make(map[string][]Value, len(t.columns))
	for i, c := range t.columns {
		data[next[i]] = t.data[c]
	}
	t.columns = next
	t.data = data
	return nil
}

// Copy returns a deep copy of t.
func (t *Table) Copy() *Table {
	c := &Table{
		columns: append([]string(nil), t.columns...),
		data:    make(map[string][]Value, len(t.columns)),
		index:   append([]int(nil), t.index...),
	}
	for name, vals := range t.data {
		c.data[name] = append([]Value(nil), vals...)
	}
	return c
}

// Row returns the row at position pos.
func (t *Table) Row(pos int) Row {
	r := make(Row, len(t.columns))
	for _, c := range t.columns {
		r[c] = t.data[c][pos]
	}
	return r
}

// Records returns every row as a slice of values in column order.
func (t *Table) Records() [][]Value {
	out := make([][]Value, t.Len())
	for pos := range out {
		row := make([]Value, len(t.columns))
		for j, c := range t.columns {
			row[j] = t.data[c][pos]
		}
		out[pos] = row
	}
	return out
}

// Filter returns the rows for which keep returns true. Index labels are
// preserved.
func (t *Table) Filter(keep func(pos int) bool) *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		data:    make(map[string][]Value, len(t.columns)),
	}
	for _, c := range t.columns {
		out.data[c] = []Value{}
	}
	for pos, label := range t.index {
		if !keep(pos) {
			continue
		}
		out.index = append(out.index, label)
		for _, c := range t.columns {
			out.data[c] = append(out.data[c], t.data[c][pos])
		}
	}
	return out
}

// Drop returns a copy of t without the rows carrying the given index labels.
// Every label must exist.
func (t *Table) Drop(labels ...int) (*Table, error) {
	drop := make(map[int]bool, len(labels))
	positions := t.labelPositions()
	for _, l := range labels {
		if _, ok := positions[l]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrIndexNotFound, l)
		}
		drop[l] = true
	}
	return t.Filter(func(pos int) bool { return !drop[t.index[pos]] }), nil
}

// ResetIndex relabels rows 0..n-1.
func (t *Table) ResetIndex() { t.index = rangeIndex(len(t.index)) }

// Equal reports whether t and o have the same columns, index and values.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.columns) != len(o.columns) || len(t.index) != len(o.index) {
		return false
	}
	for i, c := range t.columns {
		if o.columns[i] != c {
			return false
		}
		a, b := t.data[c], o.data[c]
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	for i := range t.index {
		if t.index[i] != o.index[i] {
			return false
		}
	}
	return true
}

func (t *Table) labelPositions() map[int]int {
	m := make(map[int]int, len(t.index))
	for pos, l := range t.index {
		m[l] = pos
	}
	return m
}

func (t *Table) maxIndex() int {
	max := t.index[0]
	for _, l := range t.index[1:] {
		if l > max {
			max = l
		}
	}
	return max
}

func rangeIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
