package excel

import (
	"fmt"
	"io"

	"sheetview/domain/table"

	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of an Office Open XML workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Exporter writes tables as single-sheet workbooks
type Exporter struct{}

// NewExporter creates a workbook exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// ContentType returns the MIME type of the exported file
func (e *Exporter) ContentType() string {
	return ContentTypeXLSX
}

// Export writes the header row and every data row with native cell types
func (e *Exporter) Export(w io.Writer, t *table.Table, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	// Header row
	for j, name := range t.Columns() {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	// Data rows
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			if v.Missing {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, nativeValue(v)); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func nativeValue(v table.Value) interface{} {
	if f, ok := v.Float(); ok {
		return f
	}
	if t, ok := v.Time(); ok {
		return t
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	return v.String()
}
