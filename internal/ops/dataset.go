// Package ops implements the cleaning operations applied to a Dataset: value
// helpers, column conversions, ID cleaning and duplicate detection, plus the
// Ops facade that combines them.
//
// A Dataset is owned by a single caller. Nothing in this package locks.
package ops

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/basedata/internal/frame"
	"github.com/JonMunkholm/basedata/internal/metrics"
)

// TableSource is implemented by values that wrap a table, including Dataset
// and Ops.
type TableSource interface {
	Table() *frame.Table
}

// Dataset holds the working table, an optional snapshot of the input and the
// duplicate record cache.
type Dataset struct {
	id      uuid.UUID
	table   *frame.Table
	input   *frame.Table
	dupes   map[string]*frame.Table
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewDataset wraps t, which becomes the working table. When keepInput is set
// a copy of t is retained as the input snapshot.
func NewDataset(t *frame.Table, keepInput bool) *Dataset {
	d := &Dataset{
		id:    uuid.New(),
		table: t,
		dupes: make(map[string]*frame.Table),
	}
	if keepInput {
		d.input = t.Copy()
	}
	return d
}

// FromFile loads path through the reader registered for its extension.
func FromFile(path string, keepInput bool, opts ...frame.ReadOption) (*Dataset, error) {
	read, ok := frame.ReaderFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedFormat, filepath.Ext(path), strings.Join(frame.Extensions(), ", "))
	}
	t, err := read(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewDataset(t, keepInput), nil
}

// FromObject copies the table of source, which must be a *frame.Table or a
// TableSource returning a non-nil table. A nil wrapper such as (*Ops)(nil)
// wraps no table and is rejected like any other invalid source.
func FromObject(source any, keepInput bool) (*Dataset, error) {
	var t *frame.Table
	switch s := source.(type) {
	case *frame.Table:
		t = s
	case TableSource:
		// Promoted methods on a nil embedding pointer dereference it.
		if v := reflect.ValueOf(s); v.Kind() == reflect.Pointer && v.IsNil() {
			break
		}
		t = s.Table()
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %T is neither a table nor wraps one", ErrInvalidSource, source)
	}
	return NewDataset(t.Copy(), keepInput), nil
}

// ID identifies the dataset in log entries.
func (d *Dataset) ID() uuid.UUID { return d.id }

// Table returns the working table. Operations mutate it in place.
func (d *Dataset) Table() *frame.Table { return d.table }

// Input returns a copy of the snapshot taken at construction.
func (d *Dataset) Input() (*frame.Table, error) {
	if d.input == nil {
		return nil, ErrNoSnapshot
	}
	return d.input.Copy(), nil
}

// ToFile writes the working table as CSV without the index.
func (d *Dataset) ToFile(path string, opts ...frame.WriteOption) error {
	if err := frame.WriteCSVFile(path, d.table, opts...); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	d.logger().Debug("wrote table", "path", path, "rows", d.table.Len())
	return nil
}

// SetLogger replaces the logger used for operation entries.
func (d *Dataset) SetLogger(l *slog.Logger) { d.log = l }

// SetMetrics sets the collectors operations record into. nil disables them.
func (d *Dataset) SetMetrics(m *metrics.Metrics) { d.metrics = m }

func (d *Dataset) logger() *slog.Logger {
	l := d.log
	if l == nil {
		l = slog.Default()
	}
	return l.With("dataset_id", d.id.String())
}

func (d *Dataset) column(name string) (*frame.Series, error) {
	return d.table.Column(name)
}

func (d *Dataset) setTable(t *frame.Table) { d.table = t }
