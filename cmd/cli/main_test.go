package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sheetview/domain/table"
	"sheetview/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// writeWorkbook drops the city/sales workbook into a temp dir
func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, os.WriteFile(path, testkit.MustWorkbook(t, testkit.CitySalesRows()), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestColumnsCmd(t *testing.T) {
	out, err := run(t, "columns", writeWorkbook(t))
	require.NoError(t, err)

	assert.Contains(t, out, "COLUMN")
	assert.Regexp(t, `sales\s+numeric\s+true`, out)
	assert.Regexp(t, `city\s+text\s+false`, out)
}

func TestDescribeCmd(t *testing.T) {
	path := writeWorkbook(t)

	out, err := run(t, "describe", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"rows": 3`)

	out, err = run(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "rows: 3")
	assert.Contains(t, out, "MEAN")
}

func TestFilterCmd(t *testing.T) {
	path := writeWorkbook(t)

	out, err := run(t, "filter", path, "city", "NY")
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 2")

	dest := filepath.Join(t.TempDir(), "ny.xlsx")
	out, err = run(t, "filter", path, "city", "NY", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 rows")

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = run(t, "filter", path, "city", "SF")
	assert.ErrorIs(t, err, table.ErrUnknownValue)
}

func TestPlotCmd(t *testing.T) {
	path := writeWorkbook(t)
	dest := filepath.Join(t.TempDir(), "chart.png")

	out, err := run(t, "plot", path, "city", "sales", "--kind", "bar", "--out", dest, "--width", "320", "--height", "200")
	require.NoError(t, err)
	assert.Contains(t, out, dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	_, err = run(t, "plot", path, "sales", "city", "--out", dest)
	assert.ErrorIs(t, err, table.ErrNotNumeric)

	_, err = run(t, "plot", path, "city", "sales", "--kind", "pie", "--out", dest)
	assert.ErrorIs(t, err, table.ErrUnsupportedKind)
}
