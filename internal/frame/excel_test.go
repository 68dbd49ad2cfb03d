package frame

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadExcelXLSX(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"ids": {
			{"ids", "name"},
			{12345678, "a"},
			{"1234abcd", "b"},
			{87654321},
		},
	})

	tbl, err := ReadExcel(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ids", "name"}, tbl.Columns())
	assert.Equal(t, [][]Value{
		{Int(12345678), String("a")},
		{String("1234abcd"), String("b")},
		{Int(87654321), Missing()},
	}, tbl.Records())
}

func TestReadExcelWithSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"data": {{"x"}, {"1"}},
	})

	tbl, err := ReadExcel(path, WithSheet("data"), WithRawStrings())
	require.NoError(t, err)
	assert.Equal(t, [][]Value{{String("1")}}, tbl.Records())

	_, err = ReadExcel(path, WithSheet("nope"))
	require.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadExcelMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadExcel(filepath.Join(dir, "absent.xlsx"))
	require.Error(t, err)

	_, err = ReadExcel(filepath.Join(dir, "absent.xls"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTableFromCells(t *testing.T) {
	tbl, err := tableFromCells([][]string{
		{"a", ""},
		{"1", "2", "3"},
	}, newReadOptions(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "Unnamed: 1", "Unnamed: 2"}, tbl.Columns())
	assert.Equal(t, [][]Value{{Int(1), Int(2), Int(3)}}, tbl.Records())

	_, err = tableFromCells(nil, newReadOptions(nil))
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestTrimTrailingEmpty(t *testing.T) {
	rows := trimTrailingEmpty([][]string{{"a"}, {"1"}, {"", ""}, nil})
	assert.Equal(t, [][]string{{"a"}, {"1"}}, rows)
}

func TestReadExcelXLS(t *testing.T) {
	path := filepath.Join("testdata", "codes.xls")

	tbl, err := ReadExcel(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Code", "Name", "Description"}, tbl.Columns())
	require.Equal(t, 11, tbl.Len())

	first := tbl.Records()[0]
	assert.Equal(t, []Value{String("code1"), String("name1"), String("description1")}, first)
	v, err := tbl.Value(10, "Description")
	require.NoError(t, err)
	assert.Equal(t, String("description11"), v)

	t.Run("with sheet", func(t *testing.T) {
		named, err := ReadExcel(path, WithSheet("Table"))
		require.NoError(t, err)
		assert.Equal(t, tbl.Records(), named.Records())

		_, err = ReadExcel(path, WithSheet("nope"))
		require.ErrorIs(t, err, ErrSheetNotFound)
	})
}
