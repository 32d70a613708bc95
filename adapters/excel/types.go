package excel

import "sheetview/adapters/datareadiness/coercer"

// ExcelData is the untyped grid read from one sheet
type ExcelData struct {
	Sheet   string
	Headers []string         // de-duplicated column names
	Columns [][]coercer.Cell // Columns[j][i] is row i of column j
}

// NumRows returns the number of data rows
func (d *ExcelData) NumRows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0])
}
