package ops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/basedata/internal/frame"
)

type memorySink struct {
	tables map[string]*frame.Table
	err    error
}

func (m *memorySink) WriteTable(_ context.Context, name string, t *frame.Table) error {
	if m.err != nil {
		return m.err
	}
	if m.tables == nil {
		m.tables = make(map[string]*frame.Table)
	}
	m.tables[name] = t
	return nil
}

func accountsDataset(t *testing.T) *Dataset {
	t.Helper()
	return NewDataset(mustTable(t, []string{"id", "name"},
		[]frame.Value{frame.String("12345678"), frame.String("Acme")},
		[]frame.Value{frame.String("12345678"), frame.String("Acme Corp")},
		[]frame.Value{frame.String("87654321"), frame.String("Globex")},
		[]frame.Value{frame.Missing(), frame.String("Initech")},
		[]frame.Value{frame.Missing(), frame.String("Umbrella")},
	), false)
}

func TestReportDupes(t *testing.T) {
	d := accountsDataset(t)
	ops := NewDedupeOps(d)

	dupes, err := ops.ReportDupes("id")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, dupes.Index())
	assert.Equal(t, []frame.Value{frame.String("Acme"), frame.String("Acme Corp")}, columnValues(t, dupes, "name"))

	cached, ok := ops.DupeRecords("id")
	require.True(t, ok)
	assert.True(t, cached.Equal(dupes))

	_, err = ops.ReportDupes("email")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestReportDupesToFile(t *testing.T) {
	d := accountsDataset(t)
	path := filepath.Join(t.TempDir(), "dupes.csv")

	_, err := NewDedupeOps(d).ReportDupes("id", ToFile(path))
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "index_id,id,name\n0,12345678,Acme\n1,12345678,Acme Corp\n", string(got))
}

func TestExportDupes(t *testing.T) {
	d := accountsDataset(t)
	sink := &memorySink{}

	require.NoError(t, NewDedupeOps(d).ExportDupes(context.Background(), "id", sink, "account_dupes"))

	out := sink.tables["account_dupes"]
	require.NotNil(t, out)
	assert.Equal(t, []string{IndexColumn, "id", "name"}, out.Columns())
	assert.Equal(t, []frame.Value{frame.Int(0), frame.Int(1)}, columnValues(t, out, IndexColumn))

	failing := &memorySink{err: errors.New("disk full")}
	err := NewDedupeOps(d).ExportDupes(context.Background(), "id", failing, "account_dupes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDropDupes(t *testing.T) {
	t.Run("wrong rows leave duplicates", func(t *testing.T) {
		d := accountsDataset(t)
		ops := NewDedupeOps(d)

		err := ops.DropDupes("id", []int{2}, true)
		var de *DuplicateError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "id", de.Column)
		assert.Equal(t, []frame.Value{frame.String("12345678")}, de.Values)
		assert.Equal(t, 4, d.Table().Len())
		assert.Equal(t, []int{0, 1, 2, 3}, d.Table().Index())
	})

	t.Run("without validation", func(t *testing.T) {
		d := accountsDataset(t)
		ops := NewDedupeOps(d)

		require.NoError(t, ops.DropDupes("id", []int{2}, false))
		cached, ok := ops.DupeRecords("id")
		require.True(t, ok)
		assert.Equal(t, 2, cached.Len())
	})

	t.Run("resolved", func(t *testing.T) {
		d := accountsDataset(t)
		ops := NewDedupeOps(d)

		require.NoError(t, ops.DropDupes("id", []int{1}, true))
		assert.Equal(t, []frame.Value{
			frame.String("Acme"), frame.String("Globex"), frame.String("Initech"), frame.String("Umbrella"),
		}, columnValues(t, d.Table(), "name"))
		cached, ok := ops.DupeRecords("id")
		require.True(t, ok)
		assert.Equal(t, 0, cached.Len())
	})

	t.Run("unknown label", func(t *testing.T) {
		d := accountsDataset(t)
		err := NewDedupeOps(d).DropDupes("id", []int{42}, true)
		assert.ErrorIs(t, err, frame.ErrIndexNotFound)
		assert.Equal(t, 5, d.Table().Len())
	})

	t.Run("unknown column", func(t *testing.T) {
		d := accountsDataset(t)
		assert.ErrorIs(t, NewDedupeOps(d).DropDupes("email", []int{1}, true), ErrColumnNotFound)
		assert.Equal(t, 5, d.Table().Len())
	})
}

func TestFlushDupeRecords(t *testing.T) {
	d := accountsDataset(t)
	ops := NewDedupeOps(d)

	_, ok := ops.DupeRecords("id")
	assert.False(t, ok)

	_, err := ops.ReportDupes("id")
	require.NoError(t, err)
	_, ok = ops.DupeRecords("id")
	assert.True(t, ok)

	ops.FlushDupeRecords()
	_, ok = ops.DupeRecords("id")
	assert.False(t, ok)

	// Flushing an empty cache is a no-op.
	assert.NotPanics(t, ops.FlushDupeRecords)
}

func TestWithIndexColumnConflict(t *testing.T) {
	tbl := mustTable(t, []string{IndexColumn}, []frame.Value{frame.Int(7)})
	_, err := withIndexColumn(tbl, IndexColumn)
	assert.ErrorIs(t, err, frame.ErrDuplicateColumn)
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "", labelString(nil))
	assert.Equal(t, "3,10,42", labelString([]int{3, 10, 42}))
}
