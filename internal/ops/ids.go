package ops

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/basedata/internal/frame"
)

const (
	// DefaultStripPattern matches every non-digit character.
	DefaultStripPattern = `[^0-9]`

	// DefaultIDPattern matches a single valid ID character.
	DefaultIDPattern = `[0-9]`
)

// IDOps validates and repairs identifier columns.
type IDOps struct {
	ds *Dataset
}

// NewIDOps returns the ID operations for d.
func NewIDOps(d *Dataset) IDOps { return IDOps{ds: d} }

// StripNonnumeric removes every character matching Pattern (default
// [^0-9]) from the text form of each cell. Cells left empty become the empty
// fallback (default Missing).
func (i IDOps) StripNonnumeric(column string, opts ...Option) (*frame.Series, error) {
	o := newOptions(opts)
	pattern := o.pattern
	if pattern == "" {
		pattern = DefaultStripPattern
	}
	return i.ds.substitute("strip_nonnumeric", column, pattern, "", o)
}

// ReportOffLenIDs counts the values whose text form is not targetLen
// characters long.
func (i IDOps) ReportOffLenIDs(column string, targetLen int, dropMissing bool) (*frame.Counts, error) {
	s, err := i.ds.column(column)
	if err != nil {
		return nil, err
	}
	var off []frame.Value
	for _, v := range s.Values {
		if utf8.RuneCountInString(v.Text()) != targetLen {
			off = append(off, v)
		}
	}
	return frame.CountValues(off, dropMissing), nil
}

// RemoveOffLenIDs replaces every value whose text form is not exactly
// targetLen repetitions of Pattern (default [0-9]) with Replacement (default
// Missing). Kept values are returned as text.
func (i IDOps) RemoveOffLenIDs(column string, targetLen int, opts ...Option) (*frame.Series, error) {
	o := newOptions(opts)
	s, err := i.ds.column(column)
	if err != nil {
		return nil, err
	}
	defer i.ds.metrics.ObserveOperation("remove_offlen_ids", time.Now())

	pattern := o.pattern
	if pattern == "" {
		pattern = DefaultIDPattern
	}
	expr := fmt.Sprintf("%s{%d}$", pattern, targetLen)

	replaced := 0
	out := s.Map(func(v frame.Value) frame.Value {
		r := RegexReplaceValue(frame.String(v.Text()), o.replacement, expr, o.onError)
		if r.Fallback {
			replaced++
		}
		return r.Value
	})

	i.ds.metrics.Fallbacks("remove_offlen_ids", replaced)
	i.ds.logger().Debug("remove_offlen_ids", "column", column, "rows", out.Len(), "target_len", targetLen, "replaced", replaced)
	return InplaceOrReturn(i.ds.table, column, out, o.inplace, o.returnSeries, o.target)
}

// ReplaceBlankIDs fills Missing values of column with the value of
// replaceColumn in the same row.
func (i IDOps) ReplaceBlankIDs(column, replaceColumn string, opts ...Option) (*frame.Series, error) {
	o := newOptions(opts)
	s, err := i.ds.column(column)
	if err != nil {
		return nil, err
	}
	fill, err := i.ds.column(replaceColumn)
	if err != nil {
		return nil, err
	}

	out := s.Copy()
	filled := 0
	for pos, v := range out.Values {
		if v.IsMissing() {
			out.Values[pos] = fill.Values[pos]
			filled++
		}
	}

	i.ds.logger().Debug("replace_blank_ids", "column", column, "from", replaceColumn, "rows", out.Len(), "filled", filled)
	return InplaceOrReturn(i.ds.table, column, out, o.inplace, o.returnSeries, o.target)
}

// DropBlankIDRows removes the rows whose column value is Missing and
// relabels the remaining rows 0..n-1.
func (i IDOps) DropBlankIDRows(column string) error {
	s, err := i.ds.column(column)
	if err != nil {
		return err
	}

	before := i.ds.table.Len()
	kept := i.ds.table.Filter(func(pos int) bool { return !s.Values[pos].IsMissing() })
	kept.ResetIndex()
	i.ds.setTable(kept)

	dropped := before - kept.Len()
	i.ds.metrics.RowsDropped("drop_blank_id_rows", dropped)
	i.ds.logger().Info("dropped blank id rows", "column", column, "rows", kept.Len(), "dropped", dropped)
	return nil
}
