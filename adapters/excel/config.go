package excel

import (
	"sheetview/adapters/datareadiness/coercer"
)

// ExcelConfig holds configuration for reading uploaded workbooks
type ExcelConfig struct {
	SheetName      string                 `json:"sheet_name"` // empty reads the first sheet
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	SkipBlankRows  bool                   `json:"skip_blank_rows"`
}

// DefaultExcelConfig returns sensible defaults for workbook processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
		SkipBlankRows:  true,
	}
}
