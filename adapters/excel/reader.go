package excel

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sheetview/adapters/datareadiness/coercer"
	"sheetview/domain/table"
	"sheetview/internal"

	"github.com/xuri/excelize/v2"
)

// Loader reads xlsx workbooks into typed tables
type Loader struct {
	config  ExcelConfig
	coercer *coercer.TypeCoercer
}

// NewLoader creates a workbook loader
func NewLoader(config ExcelConfig) *Loader {
	return &Loader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
	}
}

// Load parses a workbook stream and assigns every column its kind
func (l *Loader) Load(ctx context.Context, r io.Reader, name string) (*table.Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, table.NewParseError(err)
	}
	defer f.Close()
	internal.DefaultLogger.Debug("[ExcelLoader] %s opened in %.2fms", name, float64(time.Since(startTime).Nanoseconds())/1e6)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := l.ReadData(f)
	if err != nil {
		return nil, err
	}

	columns := make([]*table.Column, len(data.Headers))
	for j, header := range data.Headers {
		analysis := l.coercer.AnalyzeColumn(data.Columns[j])
		columns[j] = &table.Column{
			Name:   header,
			Kind:   analysis.RecommendedKind,
			Values: l.coercer.CoerceColumn(analysis.RecommendedKind, data.Columns[j]),
		}
		internal.DefaultLogger.Trace("[ExcelLoader] column %q typed %s (%d/%d present)", header, analysis.RecommendedKind, analysis.ValidCount, analysis.TotalCount)
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, table.NewParseError(err)
	}
	internal.DefaultLogger.Info("[ExcelLoader] %s loaded from sheet %q (%d columns, %d rows) in %.2fms",
		name, data.Sheet, t.NumColumns(), t.NumRows(), float64(time.Since(startTime).Nanoseconds())/1e6)
	return t, nil
}

// ReadData reads the configured sheet into an untyped column grid
func (l *Loader) ReadData(f *excelize.File) (*ExcelData, error) {
	sheet := l.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", table.ErrEmptyFile)
		}
		sheet = sheets[0]
	}

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, table.NewParseError(fmt.Errorf("failed to read sheet %q: %w", sheet, err))
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, table.NewParseError(fmt.Errorf("failed to read sheet %q: %w", sheet, err))
	}

	if len(formatted) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", table.ErrEmptyFile, sheet)
	}

	width := 0
	for _, row := range formatted {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no columns", table.ErrEmptyFile, sheet)
	}

	dates := newDateDetector(f, sheet)
	data := &ExcelData{
		Sheet:   sheet,
		Headers: normalizeHeaders(formatted[0], width),
		Columns: make([][]coercer.Cell, width),
	}

	for i := 1; i < len(formatted); i++ {
		if l.config.SkipBlankRows && isBlankRow(formatted[i]) {
			continue
		}
		for j := 0; j < width; j++ {
			cell := coercer.Cell{
				Formatted: cellAt(formatted, i, j),
				Raw:       cellAt(raw, i, j),
			}
			if cell.Formatted != "" || cell.Raw != "" {
				cell.Type = cellType(f, sheet, j, i)
			}
			cell.Time = dates.timeOf(j, i, cell)
			data.Columns[j] = append(data.Columns[j], cell)
		}
	}

	if data.NumRows() == 0 {
		return nil, fmt.Errorf("%w: sheet %q has a header row but no data rows", table.ErrEmptyFile, sheet)
	}
	return data, nil
}

// cellType reads the stored type of a cell; rowIdx is 0-based over sheet rows
func cellType(f *excelize.File, sheet string, colIdx, rowIdx int) excelize.CellType {
	ref, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
	if err != nil {
		return excelize.CellTypeUnset
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return excelize.CellTypeUnset
	}
	return typ
}

// normalizeHeaders trims names, labels blank headers and de-duplicates repeats
func normalizeHeaders(headerRow []string, width int) []string {
	headers := make([]string, width)
	used := make(map[string]bool, width)
	suffix := make(map[string]int)
	for j := 0; j < width; j++ {
		name := ""
		if j < len(headerRow) {
			name = strings.TrimSpace(headerRow[j])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		if used[name] {
			base, n := name, suffix[name]
			for used[name] {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
			}
			suffix[base] = n
		}
		used[name] = true
		headers[j] = name
	}
	return headers
}

func cellAt(rows [][]string, i, j int) string {
	if i >= len(rows) || j >= len(rows[i]) {
		return ""
	}
	return rows[i][j]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// dateDetector recognises numeric cells carrying a date number format
type dateDetector struct {
	f         *excelize.File
	sheet     string
	date1904  bool
	styleDate map[int]bool
}

func newDateDetector(f *excelize.File, sheet string) *dateDetector {
	d := &dateDetector{f: f, sheet: sheet, styleDate: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// timeOf converts a date-styled serial to a time; rowIdx is 0-based over sheet rows
func (d *dateDetector) timeOf(colIdx, rowIdx int, cell coercer.Cell) *time.Time {
	rawVal := strings.TrimSpace(cell.Raw)
	if rawVal == "" || rawVal == strings.TrimSpace(cell.Formatted) {
		return nil
	}
	serial, err := strconv.ParseFloat(rawVal, 64)
	if err != nil {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
	if err != nil {
		return nil
	}
	styleID, err := d.f.GetCellStyle(d.sheet, ref)
	if err != nil || !d.isDateStyle(styleID) {
		return nil
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return nil
	}
	return &t
}

func (d *dateDetector) isDateStyle(styleID int) bool {
	if isDate, ok := d.styleDate[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := d.f.GetStyle(styleID); err == nil && style != nil {
		isDate = isBuiltInDateFormat(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	d.styleDate[styleID] = isDate
	return isDate
}

// isBuiltInDateFormat covers the built-in date and time number format ids
func isBuiltInDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormatCode looks for date tokens outside quoted text and bracketed sections
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	stripped := strings.ToLower(b.String())
	return strings.ContainsAny(stripped, "ydh")
}
