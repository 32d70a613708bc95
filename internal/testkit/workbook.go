package testkit

import (
	"bytes"
	"testing"

	"sheetview/domain/table"

	"github.com/xuri/excelize/v2"
)

// Workbook builds a single-sheet xlsx in memory. rows[0] is the header row;
// nil cells are left blank.
func Workbook(rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// MustWorkbook is Workbook for tests
func MustWorkbook(tb testing.TB, rows [][]interface{}) []byte {
	tb.Helper()
	data, err := Workbook(rows)
	if err != nil {
		tb.Fatalf("failed to build workbook: %v", err)
	}
	return data
}

// CitySalesRows is the three-row city/sales example
func CitySalesRows() [][]interface{} {
	return [][]interface{}{
		{"city", "sales"},
		{"NY", 10},
		{"LA", 5},
		{"NY", 20},
	}
}

// CitySalesTable is CitySalesRows as an already-typed table
func CitySalesTable() *table.Table {
	return table.MustNew(
		&table.Column{Name: "city", Kind: table.KindText, Values: []table.Value{
			table.NewText("NY"), table.NewText("LA"), table.NewText("NY"),
		}},
		&table.Column{Name: "sales", Kind: table.KindNumeric, Values: []table.Value{
			table.NewNumber(10), table.NewNumber(5), table.NewNumber(20),
		}},
	)
}

// Numbers builds a numeric column; NaN entries become missing values
func Numbers(name string, xs ...float64) *table.Column {
	values := make([]table.Value, len(xs))
	for i, x := range xs {
		if x != x {
			values[i] = table.NewMissing(table.KindNumeric)
			continue
		}
		values[i] = table.NewNumber(x)
	}
	return &table.Column{Name: name, Kind: table.KindNumeric, Values: values}
}

// Texts builds a text column; empty strings become missing values
func Texts(name string, ss ...string) *table.Column {
	values := make([]table.Value, len(ss))
	for i, s := range ss {
		if s == "" {
			values[i] = table.NewMissing(table.KindText)
			continue
		}
		values[i] = table.NewText(s)
	}
	return &table.Column{Name: name, Kind: table.KindText, Values: values}
}
