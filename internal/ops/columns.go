package ops

import (
	"errors"
	"time"

	"github.com/JonMunkholm/basedata/internal/frame"
)

// ColumnOps converts, maps and renames columns of a Dataset.
type ColumnOps struct {
	ds *Dataset
}

// NewColumnOps returns the column operations for d.
func NewColumnOps(d *Dataset) ColumnOps { return ColumnOps{ds: d} }

// SubstituteChars replaces every match of pattern in the text form of each
// cell with sub. Cells left empty become the empty fallback.
func (c ColumnOps) SubstituteChars(column, pattern, sub string, opts ...Option) (*frame.Series, error) {
	return c.ds.substitute("substitute_chars", column, pattern, sub, newOptions(opts))
}

// ToNumeric converts the column to Int/Float values. Unconvertible values
// become Missing when coerce is set and are left as they are otherwise.
func (c ColumnOps) ToNumeric(column string, coerce bool, opts ...Option) (*frame.Series, error) {
	return c.ds.convert("to_numeric", column, coerce, toNumber, newOptions(opts))
}

// ToDatetime converts the column to Time values with the same coerce
// contract as ToNumeric.
func (c ColumnOps) ToDatetime(column string, coerce bool, opts ...Option) (*frame.Series, error) {
	return c.ds.convert("to_datetime", column, coerce, toTime, newOptions(opts))
}

// CheckNonnumeric counts the values whose text form does not convert to a
// number. Missing values count, as their text "nan" does not convert.
func (c ColumnOps) CheckNonnumeric(column string, dropMissing bool) (*frame.Counts, error) {
	return c.ds.countFailures(column, dropMissing, frame.ParseNumber)
}

// CheckDatetime counts the values whose text form does not convert to a time.
func (c ColumnOps) CheckDatetime(column string, dropMissing bool) (*frame.Counts, error) {
	return c.ds.countFailures(column, dropMissing, frame.ParseTime)
}

// ReportValues counts every value of the column.
func (c ColumnOps) ReportValues(column string, dropMissing bool) (*frame.Counts, error) {
	s, err := c.ds.column(column)
	if err != nil {
		return nil, err
	}
	return frame.CountValues(s.Values, dropMissing), nil
}

// MapValues replaces values found in mapping. With Exhaustive(true) values
// absent from mapping become Missing; otherwise they are kept.
func (c ColumnOps) MapValues(column string, mapping map[frame.Value]frame.Value, opts ...Option) (*frame.Series, error) {
	o := newOptions(opts)
	s, err := c.ds.column(column)
	if err != nil {
		return nil, err
	}
	defer c.ds.metrics.ObserveOperation("map_values", time.Now())

	out := s.Map(func(v frame.Value) frame.Value {
		if v.IsMissing() && o.ignoreMissing {
			return v
		}
		if m, ok := mapping[v]; ok {
			return m
		}
		if o.exhaustive {
			return frame.Missing()
		}
		return v
	})

	c.ds.logger().Debug("map_values", "column", column, "rows", out.Len(), "exhaustive", o.exhaustive)
	return InplaceOrReturn(c.ds.table, column, out, o.inplace, o.returnSeries, o.target)
}

// MapColumnNames renames columns (old → new). In place it renames the
// working table and returns nil; otherwise it returns a renamed copy.
func (c ColumnOps) MapColumnNames(mapping map[string]string, inplace bool) (*frame.Table, error) {
	if inplace {
		return nil, c.ds.table.Rename(mapping)
	}
	t := c.ds.table.Copy()
	if err := t.Rename(mapping); err != nil {
		return nil, err
	}
	return t, nil
}

// Applier is a function ApplyFunction can run: a RowFunc or a ColumnFunc.
type Applier interface {
	apply(t *frame.Table, columns []string) (*frame.Series, error)
}

// RowFunc computes one value per row from the selected columns.
type RowFunc func(row frame.Row) frame.Value

func (f RowFunc) apply(t *frame.Table, columns []string) (*frame.Series, error) {
	values := make([]frame.Value, t.Len())
	for pos := range values {
		full := t.Row(pos)
		row := make(frame.Row, len(columns))
		for _, c := range columns {
			row[c] = full[c]
		}
		values[pos] = f(row)
	}
	return &frame.Series{Index: t.Index(), Values: values}, nil
}

// ColumnFunc transforms one column into a series of the same length. It is
// applied to every selected column and the first result is kept.
type ColumnFunc func(s *frame.Series) *frame.Series

func (f ColumnFunc) apply(t *frame.Table, columns []string) (*frame.Series, error) {
	var first *frame.Series
	for _, c := range columns {
		s, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		out := f(s)
		if out == nil {
			return nil, errors.New("column function returned no series")
		}
		if out.Len() != t.Len() {
			return nil, frame.ErrLengthMismatch
		}
		if first == nil {
			first = out
		}
	}
	return first, nil
}

// ApplyFunction runs fn over columns. In place the result is written to the
// Target column, which must be given.
func (c ColumnOps) ApplyFunction(columns []string, fn Applier, opts ...Option) (*frame.Series, error) {
	o := newOptions(opts)
	if o.inplace && o.target == "" {
		return nil, ErrMissingTarget
	}
	if len(columns) == 0 {
		return nil, errors.New("apply_function: no columns given")
	}
	for _, col := range columns {
		if _, err := c.ds.column(col); err != nil {
			return nil, err
		}
	}
	defer c.ds.metrics.ObserveOperation("apply_function", time.Now())

	s, err := fn.apply(c.ds.table, columns)
	if err != nil {
		return nil, err
	}
	s.Name = o.target
	if s.Name == "" {
		s.Name = columns[0]
	}

	c.ds.logger().Debug("apply_function", "columns", columns, "target", o.target, "rows", s.Len())
	return InplaceOrReturn(c.ds.table, o.target, s, o.inplace, o.returnSeries, o.target)
}

// substitute is shared by SubstituteChars and StripNonnumeric.
func (d *Dataset) substitute(op, column, pattern, sub string, o options) (*frame.Series, error) {
	s, err := d.column(column)
	if err != nil {
		return nil, err
	}
	defer d.metrics.ObserveOperation(op, time.Now())

	fallbacks := 0
	out := s.Map(func(v frame.Value) frame.Value {
		r := RegexSubValue(frame.String(v.Text()), pattern, sub, o.onError, o.onEmpty)
		if r.Fallback {
			fallbacks++
		}
		return r.Value
	})

	d.metrics.Fallbacks(op, fallbacks)
	d.logger().Debug(op, "column", column, "rows", out.Len(), "fallbacks", fallbacks)
	return InplaceOrReturn(d.table, column, out, o.inplace, o.returnSeries, o.target)
}

type converter func(frame.Value) (frame.Value, bool)

func toNumber(v frame.Value) (frame.Value, bool) {
	switch v.Kind() {
	case frame.KindMissing, frame.KindInt, frame.KindFloat:
		return v, true
	case frame.KindBool:
		if b, _ := v.BoolValue(); b {
			return frame.Int(1), true
		}
		return frame.Int(0), true
	case frame.KindString:
		s, _ := v.Str()
		return frame.ParseNumber(s)
	default:
		return frame.Missing(), false
	}
}

func toTime(v frame.Value) (frame.Value, bool) {
	switch v.Kind() {
	case frame.KindMissing, frame.KindTime:
		return v, true
	case frame.KindString:
		s, _ := v.Str()
		return frame.ParseTime(s)
	default:
		return frame.Missing(), false
	}
}

func (d *Dataset) convert(op, column string, coerce bool, conv converter, o options) (*frame.Series, error) {
	s, err := d.column(column)
	if err != nil {
		return nil, err
	}
	defer d.metrics.ObserveOperation(op, time.Now())

	failed := 0
	out := s.Map(func(v frame.Value) frame.Value {
		if cv, ok := conv(v); ok {
			return cv
		}
		failed++
		if coerce {
			return frame.Missing()
		}
		return v
	})

	if coerce {
		d.metrics.Fallbacks(op, failed)
	}
	d.logger().Debug(op, "column", column, "rows", out.Len(), "unconvertible", failed, "coerce", coerce)
	return InplaceOrReturn(d.table, column, out, o.inplace, o.returnSeries, o.target)
}

func (d *Dataset) countFailures(column string, dropMissing bool, parse func(string) (frame.Value, bool)) (*frame.Counts, error) {
	s, err := d.column(column)
	if err != nil {
		return nil, err
	}
	var failed []frame.Value
	for _, v := range s.Values {
		if pv, ok := parse(v.Text()); !ok || pv.IsMissing() {
			failed = append(failed, v)
		}
	}
	return frame.CountValues(failed, dropMissing), nil
}
