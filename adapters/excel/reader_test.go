package excel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"sheetview/domain/table"
	"sheetview/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func load(t *testing.T, rows [][]interface{}) (*table.Table, error) {
	t.Helper()
	data := testkit.MustWorkbook(t, rows)
	return NewLoader(DefaultExcelConfig()).Load(context.Background(), bytes.NewReader(data), "test.xlsx")
}

func TestLoad_CitySales(t *testing.T) {
	tbl, err := load(t, testkit.CitySalesRows())
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "sales"}, tbl.Columns())
	assert.Equal(t, 3, tbl.NumRows())

	kind, _ := tbl.Kind("sales")
	assert.Equal(t, table.KindNumeric, kind)
	kind, _ = tbl.Kind("city")
	assert.Equal(t, table.KindText, kind)

	sales, _ := tbl.Column("sales")
	x, ok := sales.Values[2].Float()
	require.True(t, ok)
	assert.Equal(t, 20.0, x)
}

func TestLoad_ColumnKinds(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := [][]interface{}{{"when", "flag", "region", "amount", "note"}}
	regions := []string{"North", "South"}
	for i := 0; i < 6; i++ {
		rows = append(rows, []interface{}{
			day.AddDate(0, 0, i),
			i%2 == 0,
			regions[i%2],
			float64(i) * 1.5,
			"free text " + string(rune('a'+i)),
		})
	}

	tbl, err := load(t, rows)
	require.NoError(t, err)

	want := map[string]table.Kind{
		"when":   table.KindTemporal,
		"flag":   table.KindBoolean,
		"region": table.KindCategorical,
		"amount": table.KindNumeric,
		"note":   table.KindText,
	}
	for name, kind := range want {
		got, err := tbl.Kind(name)
		require.NoError(t, err)
		assert.Equal(t, kind, got, "column %s", name)
	}

	when, _ := tbl.Column("when")
	ts, ok := when.Values[1].Time()
	require.True(t, ok)
	assert.True(t, ts.Equal(day.AddDate(0, 0, 1)), "got %s", ts)
	assert.Equal(t, "2025-03-02", when.Values[1].String())
}

func TestLoad_MixedColumnStaysText(t *testing.T) {
	tbl, err := load(t, [][]interface{}{
		{"code"},
		{1},
		{"A7"},
		{3},
	})
	require.NoError(t, err)

	kind, _ := tbl.Kind("code")
	assert.NotEqual(t, table.KindNumeric, kind)
}

func TestLoad_StringDigitsStayText(t *testing.T) {
	tbl, err := load(t, [][]interface{}{
		{"zip", "sales"},
		{"00123", 1},
		{"02139", 2},
		{"10001", 3},
	})
	require.NoError(t, err)

	kind, _ := tbl.Kind("zip")
	assert.NotEqual(t, table.KindNumeric, kind)
	kind, _ = tbl.Kind("sales")
	assert.Equal(t, table.KindNumeric, kind)

	zip, _ := tbl.Column("zip")
	assert.Equal(t, "00123", zip.Values[0].Key())
	assert.Equal(t, "02139", zip.Values[1].Key())
}

func TestLoad_MissingCellsAndRaggedRows(t *testing.T) {
	tbl, err := load(t, [][]interface{}{
		{"a", "b", "c"},
		{1, nil, "x"},
		{2},
		{3, 4, "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumRows())

	b, _ := tbl.Column("b")
	assert.True(t, b.Values[0].Missing)
	assert.True(t, b.Values[1].Missing)
	assert.Equal(t, table.KindNumeric, b.Kind)

	c, _ := tbl.Column("c")
	assert.True(t, c.Values[1].Missing)
}

func TestLoad_HeaderNormalisation(t *testing.T) {
	tbl, err := load(t, [][]interface{}{
		{"a", "a", nil, "a", " b "},
		{1, 2, 3, 4, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.2", "b"}, tbl.Columns())
}

func TestLoad_SkipsBlankRows(t *testing.T) {
	tbl, err := load(t, [][]interface{}{
		{"a"},
		{1},
		{nil},
		{2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
}

func TestLoad_Errors(t *testing.T) {
	loader := NewLoader(DefaultExcelConfig())
	ctx := context.Background()

	_, err := loader.Load(ctx, bytes.NewReader([]byte("plain text, not a zip")), "bad.xlsx")
	assert.ErrorIs(t, err, table.ErrParse)

	empty := excelize.NewFile()
	buf, err := empty.WriteToBuffer()
	require.NoError(t, err)
	_, err = loader.Load(ctx, bytes.NewReader(buf.Bytes()), "empty.xlsx")
	assert.ErrorIs(t, err, table.ErrEmptyFile)

	_, err = load(t, [][]interface{}{{"only", "headers"}})
	assert.ErrorIs(t, err, table.ErrEmptyFile)
}

func TestLoad_CancelledContext(t *testing.T) {
	data := testkit.MustWorkbook(t, testkit.CitySalesRows())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(DefaultExcelConfig()).Load(ctx, bytes.NewReader(data), "x.xlsx")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport_RoundTrip(t *testing.T) {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	src := table.MustNew(
		testkit.Texts("city", "NY", ""),
		testkit.Numbers("sales", 10.5, 3),
		&table.Column{Name: "day", Kind: table.KindTemporal, Values: []table.Value{table.NewTime(day), table.NewTime(day.AddDate(0, 0, 1))}},
		&table.Column{Name: "ok", Kind: table.KindBoolean, Values: []table.Value{table.NewBool(true), table.NewBool(false)}},
	)

	var buf bytes.Buffer
	exporter := NewExporter()
	require.NoError(t, exporter.Export(&buf, src, "Filtered"))
	assert.Equal(t, ContentTypeXLSX, exporter.ContentType())

	loader := NewLoader(ExcelConfig{SheetName: "Filtered", CoercionConfig: DefaultExcelConfig().CoercionConfig, SkipBlankRows: true})
	got, err := loader.Load(context.Background(), &buf, "export.xlsx")
	require.NoError(t, err)

	assert.Equal(t, src.Columns(), got.Columns())
	for _, name := range []string{"sales", "day", "ok"} {
		want, _ := src.Kind(name)
		kind, _ := got.Kind(name)
		assert.Equal(t, want, kind, "column %s", name)
	}
	city, _ := got.Column("city")
	assert.True(t, city.Values[1].Missing)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("yyyy-mm-dd"))
	assert.True(t, isDateFormatCode("[$-409]d-mmm-yy;@"))
	assert.True(t, isDateFormatCode("h:mm AM/PM"))
	assert.False(t, isDateFormatCode("0.00"))
	assert.False(t, isDateFormatCode(`"days" 0`))
	assert.False(t, isDateFormatCode("[Red]#,##0"))
}
