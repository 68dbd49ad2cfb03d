package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyInput is returned when a source has no header row.
var ErrEmptyInput = errors.New("no header row")

// ReadOption configures table readers.
type ReadOption func(*readOptions)

type readOptions struct {
	delimiter rune
	raw       bool
	naValues  map[string]bool
	sheet     string
}

func newReadOptions(opts []ReadOption) readOptions {
	o := readOptions{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDelimiter sets the field delimiter (default ',').
func WithDelimiter(d rune) ReadOption {
	return func(o *readOptions) { o.delimiter = d }
}

// WithRawStrings disables type inference: every non-blank cell is a String.
func WithRawStrings() ReadOption {
	return func(o *readOptions) { o.raw = true }
}

// WithNAValues adds cell texts that are read as Missing.
func WithNAValues(values ...string) ReadOption {
	return func(o *readOptions) {
		if o.naValues == nil {
			o.naValues = make(map[string]bool, len(values))
		}
		for _, v := range values {
			o.naValues[v] = true
		}
	}
}

// WithSheet selects a worksheet by name. Only Excel readers use it.
func WithSheet(name string) ReadOption {
	return func(o *readOptions) { o.sheet = name }
}

func (o readOptions) cell(s string) Value {
	if o.naValues[s] {
		return Missing()
	}
	if o.raw {
		if s == "" {
			return Missing()
		}
		return String(s)
	}
	return InferValue(s)
}

// ReadCSV reads a table from r. The first record is the header.
func ReadCSV(r io.Reader, opts ...ReadOption) (*Table, error) {
	o := newReadOptions(opts)

	cr := csv.NewReader(CleanInput(r))
	cr.Comma = o.delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t, err := New(header...)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(record), len(header))
		}
		row := make([]Value, len(record))
		for i, s := range record {
			row[i] = o.cell(s)
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return t, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string, opts ...ReadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, opts...)
}

// WriteOption configures WriteCSV.
type WriteOption func(*writeOptions)

type writeOptions struct {
	delimiter  rune
	index      bool
	indexLabel string
}

// WithIndex writes the row index as the first column under label.
func WithIndex(label string) WriteOption {
	return func(o *writeOptions) {
		o.index = true
		o.indexLabel = label
	}
}

// WithOutputDelimiter sets the field delimiter (default ',').
func WithOutputDelimiter(d rune) WriteOption {
	return func(o *writeOptions) { o.delimiter = d }
}

// WriteCSV writes t to w. The index is omitted unless WithIndex is given.
// Missing values are written as empty fields.
func WriteCSV(w io.Writer, t *Table, opts ...WriteOption) error {
	o := writeOptions{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	cw := csv.NewWriter(w)
	cw.Comma = o.delimiter

	header := t.Columns()
	if o.index {
		header = append([]string{o.indexLabel}, header...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	index := t.Index()
	for pos, row := range t.Records() {
		record := make([]string, 0, len(header))
		if o.index {
			record = append(record, strconv.Itoa(index[pos]))
		}
		for _, v := range row {
			record = append(record, v.Field())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile creates path and writes t to it.
func WriteCSVFile(path string, t *Table, opts ...WriteOption) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, t, opts...)
}

// Format renders t as aligned text for terminal output.
func Format(t *Table) string {
	cols := t.Columns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	rows := t.Records()
	for _, row := range rows {
		for i, v := range row {
			if n := len(v.String()); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(pad(c, widths[i]))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(pad(v.String(), widths[i]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
