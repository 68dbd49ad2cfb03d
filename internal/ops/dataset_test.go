package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/basedata/internal/frame"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustTable(t *testing.T, header []string, rows ...[]frame.Value) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRecords(header, rows)
	require.NoError(t, err)
	return tbl
}

func columnValues(t *testing.T, tbl *frame.Table, name string) []frame.Value {
	t.Helper()
	s, err := tbl.Column(name)
	require.NoError(t, err)
	return s.Values
}

func TestFromFileCSV(t *testing.T) {
	path := writeFile(t, "accounts.csv", "id,name\n12345678,Acme\n87654321,Globex\n")

	d, err := FromFile(path, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, d.Table().Columns())
	assert.Equal(t, []frame.Value{frame.Int(12345678), frame.Int(87654321)}, columnValues(t, d.Table(), "id"))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", d.ID().String())
}

func TestFromFileRawStrings(t *testing.T) {
	path := writeFile(t, "accounts.csv", "id\n00012345\n")

	d, err := FromFile(path, false, frame.WithRawStrings())
	require.NoError(t, err)
	assert.Equal(t, []frame.Value{frame.String("00012345")}, columnValues(t, d.Table(), "id"))
}

func TestFromFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"id", "name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"12345678", "Acme"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	d, err := FromFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, []frame.Value{frame.String("Acme")}, columnValues(t, d.Table(), "name"))
}

func TestFromFileErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := FromFile(writeFile(t, "notes.txt", "hello"), false)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Contains(t, err.Error(), ".csv, .xls, .xlsx")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FromFile(filepath.Join(t.TempDir(), "gone.csv"), false)
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, "FILE001", MapError(err).Code)
	})

	t.Run("empty csv", func(t *testing.T) {
		_, err := FromFile(writeFile(t, "empty.csv", ""), false)
		require.ErrorIs(t, err, frame.ErrEmptyInput)
	})
}

func TestInputSnapshot(t *testing.T) {
	tbl := mustTable(t, []string{"id"}, []frame.Value{frame.Int(1)}, []frame.Value{frame.Int(2)})

	d := NewDataset(tbl, true)
	require.NoError(t, d.Table().SetColumn("id", frame.NewSeries("id", []frame.Value{frame.Int(9), frame.Int(9)})))

	in, err := d.Input()
	require.NoError(t, err)
	assert.Equal(t, []frame.Value{frame.Int(1), frame.Int(2)}, columnValues(t, in, "id"))

	// The returned snapshot is a copy.
	require.NoError(t, in.SetColumn("id", frame.NewSeries("id", []frame.Value{frame.Int(0), frame.Int(0)})))
	again, err := d.Input()
	require.NoError(t, err)
	assert.Equal(t, []frame.Value{frame.Int(1), frame.Int(2)}, columnValues(t, again, "id"))

	_, err = NewDataset(tbl, false).Input()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestFromObject(t *testing.T) {
	tbl := mustTable(t, []string{"id"}, []frame.Value{frame.Int(1)})

	t.Run("table", func(t *testing.T) {
		d, err := FromObject(tbl, false)
		require.NoError(t, err)
		assert.True(t, d.Table().Equal(tbl))
		assert.NotSame(t, tbl, d.Table())
	})

	t.Run("dataset", func(t *testing.T) {
		src := NewDataset(tbl, false)
		d, err := FromObject(src, true)
		require.NoError(t, err)
		assert.True(t, d.Table().Equal(tbl))
		assert.NotSame(t, src.Table(), d.Table())
		assert.NotEqual(t, src.ID(), d.ID())
	})

	t.Run("ops facade", func(t *testing.T) {
		d, err := FromObject(NewOps(NewDataset(tbl, false)), false)
		require.NoError(t, err)
		assert.True(t, d.Table().Equal(tbl))
	})

	t.Run("nil wrapper", func(t *testing.T) {
		for _, src := range []any{(*Dataset)(nil), (*Ops)(nil), NewDataset(nil, false)} {
			assert.NotPanics(t, func() {
				_, err := FromObject(src, false)
				assert.ErrorIs(t, err, ErrInvalidSource)
			}, "%T", src)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, src := range []any{nil, 42, "accounts.csv", (*frame.Table)(nil)} {
			_, err := FromObject(src, false)
			assert.ErrorIs(t, err, ErrInvalidSource)
		}
	})
}

func TestToFile(t *testing.T) {
	tbl := mustTable(t, []string{"id", "name"},
		[]frame.Value{frame.Int(1), frame.String("Acme")},
		[]frame.Value{frame.Missing(), frame.String("Globex")},
	)
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, NewDataset(tbl, false).ToFile(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Acme\n,Globex\n", string(got))

	err = NewDataset(tbl, false).ToFile(filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)
}
