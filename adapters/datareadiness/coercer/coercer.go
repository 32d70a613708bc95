package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"sheetview/domain/table"

	"github.com/xuri/excelize/v2"
)

// Cell is one spreadsheet cell as the reader sees it
type Cell struct {
	Formatted string     // display text
	Raw       string     // unformatted value (numbers without number formats)
	Time      *time.Time // set by the reader for date-styled numeric cells
	// Type is the type the workbook stored the cell as; CellTypeUnset when unknown
	Type excelize.CellType
}

// StoredAsNumber reports whether the workbook may hold a number in this cell.
// Cells stored as strings stay text even when they look numeric.
func (c Cell) StoredAsNumber() bool {
	switch c.Type {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		return true
	}
	return false
}

// IsEmpty reports a cell with no content
func (c Cell) IsEmpty() bool {
	return c.Time == nil && strings.TrimSpace(c.Formatted) == "" && strings.TrimSpace(c.Raw) == ""
}

// TypeCoercer assigns a column kind and converts cells to typed values
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the typing thresholds
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // share of present cells that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // share of present cells that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // share of present cells that must parse as timestamps
	MaxCategories      int     `json:"max_categories"`      // distinct text values allowed in a categorical column
	CategoricalRatio   float64 `json:"categorical_ratio"`   // max distinct/present ratio for a categorical column
}

// DefaultCoercionConfig types a column only when every present cell agrees
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   1.0,
		BooleanThreshold:   1.0,
		TimestampThreshold: 1.0,
		MaxCategories:      20,
		CategoricalRatio:   0.5,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int        `json:"total_count"`
	ValidCount      int        `json:"valid_count"`
	NumericCount    int        `json:"numeric_count"`
	BooleanCount    int        `json:"boolean_count"`
	TimestampCount  int        `json:"timestamp_count"`
	UniqueCount     int        `json:"unique_count"`
	NumericRatio    float64    `json:"numeric_ratio"`
	BooleanRatio    float64    `json:"boolean_ratio"`
	TimestampRatio  float64    `json:"timestamp_ratio"`
	RecommendedKind table.Kind `json:"recommended_kind"`
}

// AnalyzeColumn counts how many cells parse as each type and recommends a kind
func (c *TypeCoercer) AnalyzeColumn(cells []Cell) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(cells)}
	unique := make(map[string]struct{})

	for _, cell := range cells {
		if cell.IsEmpty() {
			continue
		}
		analysis.ValidCount++
		unique[strings.TrimSpace(cell.Formatted)] = struct{}{}

		if _, ok := c.tryParseNumeric(cell); ok {
			analysis.NumericCount++
		}
		if _, ok := c.tryParseBoolean(cell); ok {
			analysis.BooleanCount++
		}
		if _, ok := c.tryParseTimestamp(cell); ok {
			analysis.TimestampCount++
		}
	}
	analysis.UniqueCount = len(unique)

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}
	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	return analysis
}

// CoerceColumn converts cells to values of the given kind. Cells that do not
// parse as the kind become missing values.
func (c *TypeCoercer) CoerceColumn(kind table.Kind, cells []Cell) []table.Value {
	values := make([]table.Value, len(cells))
	for i, cell := range cells {
		values[i] = c.CoerceValue(kind, cell)
	}
	return values
}

// CoerceValue converts a single cell to the column's kind
func (c *TypeCoercer) CoerceValue(kind table.Kind, cell Cell) table.Value {
	if cell.IsEmpty() {
		return table.NewMissing(kind)
	}
	var (
		v  table.Value
		ok bool
	)
	switch kind {
	case table.KindNumeric:
		v, ok = c.tryParseNumeric(cell)
	case table.KindBoolean:
		v, ok = c.tryParseBoolean(cell)
	case table.KindTemporal:
		v, ok = c.tryParseTimestamp(cell)
	case table.KindCategorical:
		v, ok = table.NewCategory(strings.TrimSpace(cell.Formatted)), true
	default:
		v, ok = table.NewText(strings.TrimSpace(cell.Formatted)), true
	}
	if !ok {
		return table.NewMissing(kind)
	}
	return v
}

// tryParseNumeric parses the raw cell value; number formats never reach it
func (c *TypeCoercer) tryParseNumeric(cell Cell) (table.Value, bool) {
	if !cell.StoredAsNumber() {
		return table.Value{}, false
	}
	raw := strings.TrimSpace(cell.Raw)
	if raw == "" {
		raw = strings.TrimSpace(cell.Formatted)
	}
	if raw == "" {
		return table.Value{}, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return table.Value{}, false
	}
	return table.NewNumber(val), true
}

// tryParseBoolean accepts worded booleans only; 0 and 1 stay numeric
func (c *TypeCoercer) tryParseBoolean(cell Cell) (table.Value, bool) {
	switch strings.ToLower(strings.TrimSpace(cell.Formatted)) {
	case "true", "yes":
		return table.NewBool(true), true
	case "false", "no":
		return table.NewBool(false), true
	}
	return table.Value{}, false
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// tryParseTimestamp uses the reader's date conversion first, then common text layouts
func (c *TypeCoercer) tryParseTimestamp(cell Cell) (table.Value, bool) {
	if cell.Time != nil {
		return table.NewTime(*cell.Time), true
	}
	for _, candidate := range []string{strings.TrimSpace(cell.Raw), strings.TrimSpace(cell.Formatted)} {
		if candidate == "" {
			continue
		}
		for _, format := range timestampFormats {
			if t, err := time.Parse(format, candidate); err == nil {
				return table.NewTime(t), true
			}
		}
	}
	return table.Value{}, false
}

// determineRecommendedKind checks thresholds from the most specific kind to the least
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) table.Kind {
	if analysis.ValidCount == 0 {
		return table.KindText
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return table.KindTemporal
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return table.KindBoolean
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return table.KindNumeric
	}

	uniqueRatio := float64(analysis.UniqueCount) / float64(analysis.ValidCount)
	if analysis.UniqueCount <= c.config.MaxCategories && uniqueRatio <= c.config.CategoricalRatio {
		return table.KindCategorical
	}
	return table.KindText
}
