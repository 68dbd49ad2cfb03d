package ops

import (
	"context"
	"fmt"
	"strconv"

	"github.com/JonMunkholm/basedata/internal/frame"
)

// IndexColumn names the row label column in persisted duplicate reports.
const IndexColumn = "index_id"

// TableWriter persists a table under a name. The SQLite, PostgreSQL and S3
// sinks implement it.
type TableWriter interface {
	WriteTable(ctx context.Context, name string, t *frame.Table) error
}

// DedupeOps finds, reports and removes rows with duplicate key values. Every
// check stores its result in the dataset's duplicate record cache.
type DedupeOps struct {
	ds *Dataset
}

// NewDedupeOps returns the duplicate operations for d.
func NewDedupeOps(d *Dataset) DedupeOps { return DedupeOps{ds: d} }

// checkDupes caches the rows whose column value occurs more than once.
// Missing values are never duplicates. Rows keep their index labels.
func (d *Dataset) checkDupes(column string) (*frame.Table, error) {
	s, err := d.column(column)
	if err != nil {
		return nil, err
	}
	counts := frame.CountValues(s.Values, true)
	dupes := d.table.Filter(func(pos int) bool {
		v := s.Values[pos]
		return !v.IsMissing() && counts.Get(v) > 1
	})

	d.dupes[column] = dupes
	d.metrics.DuplicateRows(column, dupes.Len())
	d.logger().Debug("check_dupes", "column", column, "rows", d.table.Len(), "duplicates", dupes.Len())
	return dupes, nil
}

// ReportDupes re-checks column and returns a copy of the duplicate rows. With
// ToFile the rows are also written as CSV with their index labels in a
// leading index_id column.
func (o DedupeOps) ReportDupes(column string, opts ...Option) (*frame.Table, error) {
	opt := newOptions(opts)
	dupes, err := o.ds.checkDupes(column)
	if err != nil {
		return nil, err
	}
	if opt.toFile != "" {
		if err := frame.WriteCSVFile(opt.toFile, dupes, frame.WithIndex(IndexColumn)); err != nil {
			return nil, fmt.Errorf("write duplicate report: %w", err)
		}
	}
	return dupes.Copy(), nil
}

// ExportDupes re-checks column and writes the duplicate rows, with their
// index labels in index_id, to sink under name.
func (o DedupeOps) ExportDupes(ctx context.Context, column string, sink TableWriter, name string) error {
	dupes, err := o.ds.checkDupes(column)
	if err != nil {
		return err
	}
	t, err := withIndexColumn(dupes, IndexColumn)
	if err != nil {
		return err
	}
	if err := sink.WriteTable(ctx, name, t); err != nil {
		return fmt.Errorf("export duplicates of %q: %w", column, err)
	}
	o.ds.logger().Info("exported duplicates", "column", column, "table", name, "rows", t.Len())
	return nil
}

// DropDupes drops the rows labelled rowIDs, relabels the rest 0..n-1 and
// re-checks column. With validate, remaining duplicates fail with a
// *DuplicateError.
func (o DedupeOps) DropDupes(column string, rowIDs []int, validate bool) error {
	if _, err := o.ds.column(column); err != nil {
		return err
	}
	kept, err := o.ds.table.Drop(rowIDs...)
	if err != nil {
		return err
	}
	kept.ResetIndex()
	dropped := o.ds.table.Len() - kept.Len()
	o.ds.setTable(kept)

	o.ds.metrics.RowsDropped("drop_dupes", dropped)
	o.ds.logger().Info("dropped duplicate rows", "column", column, "labels", labelString(rowIDs), "rows", kept.Len(), "dropped", dropped)

	dupes, err := o.ds.checkDupes(column)
	if err != nil {
		return err
	}
	if validate && dupes.Len() > 0 {
		s, _ := dupes.Column(column)
		return &DuplicateError{Column: column, Values: frame.CountValues(s.Values, true).Values()}
	}
	return nil
}

// FlushDupeRecords empties the duplicate record cache.
func (o DedupeOps) FlushDupeRecords() {
	clear(o.ds.dupes)
}

// DupeRecords returns the cached duplicate rows of column, if checked.
func (o DedupeOps) DupeRecords(column string) (*frame.Table, bool) {
	t, ok := o.ds.dupes[column]
	if !ok {
		return nil, false
	}
	return t.Copy(), true
}

// withIndexColumn returns a copy of t with its index labels as a leading
// Int column.
func withIndexColumn(t *frame.Table, name string) (*frame.Table, error) {
	labels := t.Index()
	idx := make([]frame.Value, len(labels))
	for i, l := range labels {
		idx[i] = frame.Int(int64(l))
	}

	cols := []*frame.Series{{Name: name, Index: labels, Values: idx}}
	for _, c := range t.Columns() {
		if c == name {
			return nil, fmt.Errorf("%w: %q", frame.ErrDuplicateColumn, name)
		}
		s, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		cols = append(cols, s)
	}
	return frame.FromSeries(cols...)
}

// labelString renders index labels for log fields.
func labelString(ids []int) string {
	out := make([]byte, 0, len(ids)*3)
	for i, id := range ids {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendInt(out, int64(id), 10)
	}
	return string(out)
}
