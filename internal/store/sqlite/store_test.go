package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/basedata/internal/frame"
	"github.com/JonMunkholm/basedata/internal/ops"
)

var _ ops.TableWriter = (*Store)(nil)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "basedata.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func accounts(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRecords([]string{"id", "name", "balance", "active"}, [][]frame.Value{
		{frame.Int(12345678), frame.String("Acme"), frame.Float(10.5), frame.Bool(true)},
		{frame.Int(87654321), frame.Missing(), frame.Int(3), frame.Bool(false)},
		{frame.Missing(), frame.String("O\"Brien's"), frame.Missing(), frame.Missing()},
	})
	require.NoError(t, err)
	return tbl
}

func TestOpenCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "reports.sqlite3")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())
	assert.FileExists(t, path)
}

func TestWriteAndReadTable(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.WriteTable(ctx, "accounts", accounts(t)))

	got, err := s.ReadTable(ctx, "accounts")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "balance", "active"}, got.Columns())
	assert.Equal(t, [][]frame.Value{
		{frame.Int(12345678), frame.String("Acme"), frame.Float(10.5), frame.Int(1)},
		{frame.Int(87654321), frame.Missing(), frame.Float(3), frame.Int(0)},
		{frame.Missing(), frame.String("O\"Brien's"), frame.Missing(), frame.Missing()},
	}, got.Records())
}

func TestWriteTableReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.WriteTable(ctx, "accounts", accounts(t)))

	small, err := frame.FromRecords([]string{"code"}, [][]frame.Value{{frame.String("x")}})
	require.NoError(t, err)
	require.NoError(t, s.WriteTable(ctx, "accounts", small))

	got, err := s.ReadTable(ctx, "accounts")
	require.NoError(t, err)
	assert.True(t, got.Equal(small))
}

func TestMixedColumnsAreText(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	tbl, err := frame.FromRecords([]string{"id"}, [][]frame.Value{{frame.Int(5)}, {frame.String("abc")}})
	require.NoError(t, err)
	require.NoError(t, s.WriteTable(ctx, "mixed", tbl))

	got, err := s.ReadTable(ctx, "mixed")
	require.NoError(t, err)
	assert.Equal(t, [][]frame.Value{{frame.String("5")}, {frame.String("abc")}}, got.Records())
}

func TestTablesAndQuoting(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	odd, err := frame.FromRecords([]string{`col "a"`, "select"}, [][]frame.Value{{frame.Int(1), frame.Int(2)}})
	require.NoError(t, err)
	require.NoError(t, s.WriteTable(ctx, `dupes "2024"`, odd))
	require.NoError(t, s.WriteTable(ctx, "accounts", accounts(t)))

	names, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", `dupes "2024"`}, names)

	got, err := s.ReadTable(ctx, `dupes "2024"`)
	require.NoError(t, err)
	assert.True(t, got.Equal(odd))
}

func TestReadTableNotFound(t *testing.T) {
	_, err := openTemp(t).ReadTable(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestWriteTableWithoutColumns(t *testing.T) {
	empty, err := frame.New()
	require.NoError(t, err)
	assert.Error(t, openTemp(t).WriteTable(context.Background(), "empty", empty))
}

func TestInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, ":memory:", s.Path())

	require.NoError(t, s.WriteTable(context.Background(), "accounts", accounts(t)))
	got, err := s.ReadTable(context.Background(), "accounts")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
}

func TestExportDupesToSQLite(t *testing.T) {
	s := openTemp(t)
	tbl, err := frame.FromRecords([]string{"id"}, [][]frame.Value{
		{frame.String("12345678")}, {frame.String("87654321")}, {frame.String("12345678")},
	})
	require.NoError(t, err)

	o := ops.NewOps(ops.NewDataset(tbl, false))
	require.NoError(t, o.ExportDupes(context.Background(), "id", s, "id_dupes"))

	got, err := s.ReadTable(context.Background(), "id_dupes")
	require.NoError(t, err)
	assert.Equal(t, []string{ops.IndexColumn, "id"}, got.Columns())
	assert.Equal(t, [][]frame.Value{
		{frame.Int(0), frame.String("12345678")},
		{frame.Int(2), frame.String("12345678")},
	}, got.Records())
}
