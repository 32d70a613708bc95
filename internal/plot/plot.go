package plot

import (
	"fmt"
	"math"

	"sheetview/domain/chart"
	"sheetview/domain/table"
	"sheetview/internal"
	"sheetview/ports"
)

// ValidateNumeric reports whether column exists and carries the numeric tag
func ValidateNumeric(f *table.Filtered, column string) bool {
	if f == nil || f.Table == nil {
		return false
	}
	kind, err := f.Kind(column)
	return err == nil && kind.IsNumeric()
}

// BuildSeries indexes y by x in row order. Repeated x values are kept as
// separate points and flagged on the series.
func BuildSeries(f *table.Filtered, x, y string) (chart.Series, error) {
	xCol, err := f.Column(x)
	if err != nil {
		return chart.Series{}, err
	}
	yCol, err := f.Column(y)
	if err != nil {
		return chart.Series{}, err
	}
	if !yCol.Kind.IsNumeric() {
		return chart.Series{}, table.NewNotNumericError(y)
	}

	series := chart.Series{
		XName:  x,
		YName:  y,
		XKind:  xCol.Kind,
		Index:  make([]table.Value, 0, xCol.Len()),
		Values: make([]float64, 0, yCol.Len()),
	}
	seen := make(map[string]struct{}, xCol.Len())
	for i := range xCol.Values {
		xv, yv := xCol.Values[i], yCol.Values[i]

		value := math.NaN()
		if !yv.Missing {
			num, ok := yv.Float()
			if !ok {
				return chart.Series{}, table.NewPlottingError(fmt.Errorf("row %d of %q holds a %s value", i, y, yv.Kind))
			}
			value = num
		}

		key := xv.Key()
		if _, dup := seen[key]; dup {
			series.DuplicateIndex = true
		}
		seen[key] = struct{}{}

		series.Index = append(series.Index, xv)
		series.Values = append(series.Values, value)
	}
	return series, nil
}

// Stage validates plot requests and hands series to the renderer
type Stage struct {
	renderer ports.ChartRenderer
}

// NewStage creates a plot stage backed by renderer
func NewStage(renderer ports.ChartRenderer) *Stage {
	return &Stage{renderer: renderer}
}

// Render dispatches on the chart kind. Renderer failures, including panics,
// come back as plotting errors.
func (s *Stage) Render(series chart.Series, kind chart.Kind) (out *chart.Rendered, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, table.NewPlottingError(fmt.Errorf("renderer panic: %v", r))
		}
	}()

	switch kind {
	case chart.KindLine:
		out, err = s.renderer.RenderLine(series)
	case chart.KindBar:
		out, err = s.renderer.RenderBar(series)
	default:
		return nil, fmt.Errorf("%w: %q", table.ErrUnsupportedKind, kind)
	}
	if err != nil {
		return nil, table.NewPlottingError(err)
	}
	return out, nil
}

// Plot is the gate between a request and the renderer. A non-numeric y column
// is rejected before any series is built; a series with nothing to draw
// returns NoData without rendering.
func (s *Stage) Plot(f *table.Filtered, spec chart.Spec) (*chart.Rendered, error) {
	if f == nil || f.Table == nil {
		return nil, table.NewPlottingError(fmt.Errorf("no table to plot"))
	}
	if !f.HasColumn(spec.X) {
		return nil, table.NewUnknownColumnError(spec.X)
	}
	if !f.HasColumn(spec.Y) {
		return nil, table.NewUnknownColumnError(spec.Y)
	}
	if !ValidateNumeric(f, spec.Y) {
		internal.DefaultLogger.Debug("[Plot] rejected %s: %q is not numeric", spec.Kind, spec.Y)
		return nil, table.NewNotNumericError(spec.Y)
	}
	if spec.Kind != chart.KindLine && spec.Kind != chart.KindBar {
		return nil, fmt.Errorf("%w: %q", table.ErrUnsupportedKind, spec.Kind)
	}

	series, err := BuildSeries(f, spec.X, spec.Y)
	if err != nil {
		return nil, err
	}
	if series.Plottable() == 0 {
		internal.DefaultLogger.Debug("[Plot] %s of %s by %s has no data", spec.Kind, spec.Y, spec.X)
		return &chart.Rendered{Kind: spec.Kind, NoData: true}, nil
	}
	if series.DuplicateIndex {
		internal.DefaultLogger.Debug("[Plot] %q repeats x values; keeping all %d points", spec.X, series.Len())
	}

	return s.Render(series, spec.Kind)
}
