package summary

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"sheetview/domain/table"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// NumericStats are the descriptive statistics of a numeric column.
// Fields other than Count are NaN when the column has no values.
type NumericStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// MarshalJSON writes NaN statistics as null
func (n NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"count": n.Count,
		"mean":  jsonFloat(n.Mean),
		"std":   jsonFloat(n.Std),
		"min":   jsonFloat(n.Min),
		"p25":   jsonFloat(n.P25),
		"p50":   jsonFloat(n.P50),
		"p75":   jsonFloat(n.P75),
		"max":   jsonFloat(n.Max),
	})
}

func jsonFloat(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// ObjectStats describe a non-numeric column
type ObjectStats struct {
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// ColumnSummary holds exactly one of Numeric or Object
type ColumnSummary struct {
	Name    string        `json:"name"`
	Kind    table.Kind    `json:"kind"`
	Missing int           `json:"missing"`
	Numeric *NumericStats `json:"numeric,omitempty"`
	Object  *ObjectStats  `json:"object,omitempty"`
}

// Summary is the per-column description of a table, in column order
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Get returns the summary of one column
func (s *Summary) Get(name string) (ColumnSummary, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnSummary{}, false
}

// NumericColumns returns the summaries of numeric columns only
func (s *Summary) NumericColumns() []ColumnSummary {
	var out []ColumnSummary
	for _, col := range s.Columns {
		if col.Numeric != nil {
			out = append(out, col)
		}
	}
	return out
}

// ObjectColumns returns the summaries of non-numeric columns only
func (s *Summary) ObjectColumns() []ColumnSummary {
	var out []ColumnSummary
	for _, col := range s.Columns {
		if col.Object != nil {
			out = append(out, col)
		}
	}
	return out
}

// Engine computes table summaries
type Engine struct{}

// NewEngine creates a summary engine
func NewEngine() *Engine {
	return &Engine{}
}

// Describe summarises every column. Numeric columns get count, mean, std,
// min, quartiles and max; other columns get count, unique, top and freq.
func (e *Engine) Describe(t *table.Table) (*Summary, error) {
	out := &Summary{Rows: t.NumRows(), Columns: make([]ColumnSummary, 0, t.NumColumns())}
	for _, name := range t.Columns() {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cs, err := e.DescribeColumn(col)
		if err != nil {
			return nil, fmt.Errorf("failed to describe column %q: %w", name, err)
		}
		out.Columns = append(out.Columns, cs)
	}
	return out, nil
}

// DescribeColumn summarises a single column according to its kind
func (e *Engine) DescribeColumn(col *table.Column) (ColumnSummary, error) {
	cs := ColumnSummary{Name: col.Name, Kind: col.Kind}
	for _, v := range col.Values {
		if v.Missing {
			cs.Missing++
		}
	}

	if col.Kind.IsNumeric() {
		data := make([]float64, 0, col.Len())
		for _, v := range col.Values {
			if f, ok := v.Float(); ok {
				data = append(data, f)
			}
		}
		numeric, err := describeNumeric(data)
		if err != nil {
			return cs, err
		}
		cs.Numeric = &numeric
		return cs, nil
	}

	object := describeObject(col.Values)
	cs.Object = &object
	return cs, nil
}

func describeNumeric(data []float64) (NumericStats, error) {
	nan := math.NaN()
	n := NumericStats{Count: len(data), Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	if len(data) == 0 {
		return n, nil
	}

	var err error
	if n.Mean, err = stats.Mean(data); err != nil {
		return n, err
	}
	if n.Min, err = stats.Min(data); err != nil {
		return n, err
	}
	if n.Max, err = stats.Max(data); err != nil {
		return n, err
	}
	// Sample standard deviation; undefined for a single value
	if len(data) > 1 {
		n.Std = stat.StdDev(data, nil)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	n.P25 = quantile(sorted, 0.25)
	n.P50 = quantile(sorted, 0.50)
	n.P75 = quantile(sorted, 0.75)
	return n, nil
}

// quantile interpolates linearly between the closest ranks of sorted data
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func describeObject(values []table.Value) ObjectStats {
	var o ObjectStats
	counts := make(map[string]int)
	var order []string
	labels := make(map[string]string)
	for _, v := range values {
		if v.Missing {
			continue
		}
		o.Count++
		key := v.Key()
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			labels[key] = v.String()
		}
		counts[key]++
	}
	o.Unique = len(order)
	// Ties go to the value seen first
	for _, key := range order {
		if counts[key] > o.Freq {
			o.Freq = counts[key]
			o.Top = labels[key]
		}
	}
	return o
}
