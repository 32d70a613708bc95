package ui

import (
	"fmt"
	"html/template"
	"net/url"
	"time"

	"sheetview/app"
	"sheetview/domain/chart"
	"sheetview/domain/table"
	"sheetview/internal/summary"
)

type bannerView struct {
	Level   string
	Message string
	Hint    string
}

type cellView struct {
	Text    string
	Missing bool
}

// tableView is a table ready for display; Rows may be capped below Count
type tableView struct {
	Columns   []string
	Rows      [][]cellView
	Count     int
	Truncated bool
	// ExportURL downloads exactly these rows; empty when not exportable
	ExportURL string
}

type valueOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type chartView struct {
	X        string
	Y        string
	Label    string
	Filter   string
	NoData   bool
	ImageURL template.URL
	PNGURL   string
	Width    int
	Height   int
}

type indexPage struct {
	Title       string
	Banner      *bannerView
	MaxUploadMB int64
}

type sessionPage struct {
	Title      string
	SessionID  string
	FileName   string
	LoadedAt   time.Time
	RowCount   int
	Columns    []app.ColumnInfo
	Preview    tableView
	Summary    *summary.Summary
	Values     []valueOption
	Filtered   *tableView
	ChartKinds []chart.Kind
}

func newTableView(t *table.Table, maxRows int) tableView {
	n := t.NumRows()
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}
	view := tableView{
		Columns:   t.Columns(),
		Rows:      make([][]cellView, n),
		Count:     t.NumRows(),
		Truncated: n < t.NumRows(),
	}
	for i := 0; i < n; i++ {
		row := t.Row(i)
		cells := make([]cellView, len(row))
		for j, v := range row {
			cells[j] = cellView{Text: v.String(), Missing: v.Missing}
		}
		view.Rows[i] = cells
	}
	return view
}

// exportURL points the download at the rows selected by req
func exportURL(sessionID string, req app.FilterRequest) string {
	if !req.Active() {
		return fmt.Sprintf("/s/%s/export.xlsx", sessionID)
	}
	q := url.Values{"column": {req.Column}, "value": {req.Value}}
	return fmt.Sprintf("/s/%s/export.xlsx?%s", sessionID, q.Encode())
}

func newValueOptions(values []table.Value) []valueOption {
	opts := make([]valueOption, len(values))
	for i, v := range values {
		label := v.String()
		if v.Missing {
			label = table.MissingKey
		}
		opts[i] = valueOption{Key: v.Key(), Label: label}
	}
	return opts
}

// jsonRows converts rows to JSON-native cells; missing cells are null
func jsonRows(t *table.Table) [][]interface{} {
	rows := make([][]interface{}, t.NumRows())
	for i := range rows {
		row := t.Row(i)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = jsonCell(v)
		}
		rows[i] = cells
	}
	return rows
}

func jsonCell(v table.Value) interface{} {
	if v.Missing {
		return nil
	}
	if f, ok := v.Float(); ok {
		return f
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	return v.String()
}
