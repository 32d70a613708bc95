package ports

import (
	"context"
	"io"

	"sheetview/domain/chart"
	"sheetview/domain/table"
)

// ChartRenderer draws a series. Implementations only see series with at least one plottable point.
type ChartRenderer interface {
	RenderLine(series chart.Series) (*chart.Rendered, error)
	RenderBar(series chart.Series) (*chart.Rendered, error)
}

// TableLoader parses an uploaded workbook into a typed table
type TableLoader interface {
	Load(ctx context.Context, r io.Reader, name string) (*table.Table, error)
}

// TableExporter writes a table back out as a downloadable file
type TableExporter interface {
	Export(w io.Writer, t *table.Table, sheet string) error
	ContentType() string
}
