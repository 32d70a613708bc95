package render

import (
	"bytes"
	"fmt"
	"math"
	"time"

	domainchart "sheetview/domain/chart"
	"sheetview/domain/table"
	"sheetview/internal"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ContentTypePNG is the MIME type of rendered charts
const ContentTypePNG = "image/png"

// maxTicks caps the labels drawn on a positional x axis
const maxTicks = 20

var (
	seriesColor = drawing.ColorFromHex("2563eb")
	barColor    = drawing.ColorFromHex("0d9488")
)

// Renderer draws series as PNG images with go-chart
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer producing images of the given size
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

type point struct {
	x     float64
	label string
	y     float64
}

// RenderLine draws a line chart. Numeric x values use a continuous axis,
// temporal x values a time axis and anything else positional ticks.
func (r *Renderer) RenderLine(s domainchart.Series) (*domainchart.Rendered, error) {
	pts := linePoints(s)
	if len(pts) == 0 {
		return &domainchart.Rendered{Kind: domainchart.KindLine, NoData: true}, nil
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.x, p.y
	}

	xAxis := chart.XAxis{Name: s.XName}
	switch s.XKind {
	case table.KindTemporal:
		xAxis.ValueFormatter = timeFormatter(xs)
	case table.KindNumeric:
	default:
		xAxis.Ticks = positionalTicks(pts)
	}
	xMin, xMax := paddedRange(xs, s.XKind == table.KindNumeric || s.XKind == table.KindTemporal)
	if s.XKind == table.KindTemporal && allEqual(xs) {
		// a single instant gets half a day either side
		xMin, xMax = xs[0]-float64(12*time.Hour), xs[0]+float64(12*time.Hour)
	}
	xAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}

	yMin, yMax := paddedRange(ys, true)
	graph := chart.Chart{
		Title:      fmt.Sprintf("%s by %s", s.YName, s.XName),
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: s.YName, Range: &chart.ContinuousRange{Min: yMin, Max: yMax}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    s.YName,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 2,
					DotColor:    seriesColor,
					DotWidth:    3,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("line chart render: %w", err)
	}
	internal.DefaultLogger.Trace("[Renderer] line %s by %s: %d points, %d bytes", s.YName, s.XName, len(pts), buf.Len())
	return &domainchart.Rendered{Kind: domainchart.KindLine, ContentType: ContentTypePNG, Data: buf.Bytes()}, nil
}

// RenderBar draws one bar per plottable point, labelled with its x value
func (r *Renderer) RenderBar(s domainchart.Series) (*domainchart.Rendered, error) {
	var bars []chart.Value
	var ys []float64
	for i, x := range s.Index {
		y := s.Values[i]
		if math.IsNaN(y) {
			continue
		}
		bars = append(bars, chart.Value{
			Value: y,
			Label: label(x),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
		ys = append(ys, y)
	}
	if len(bars) == 0 {
		return &domainchart.Rendered{Kind: domainchart.KindBar, NoData: true}, nil
	}

	yMin, yMax := paddedRange(ys, true)
	if yMin > 0 {
		yMin = 0
	}
	if yMax < 0 {
		yMax = 0
	}

	barWidth, spacing := barGeometry(r.width, len(bars))
	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s by %s", s.YName, s.XName),
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  s.YName,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		UseBaseValue: yMin < 0,
		BaseValue:    0,
		Bars:         bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("bar chart render: %w", err)
	}
	internal.DefaultLogger.Trace("[Renderer] bar %s by %s: %d bars, %d bytes", s.YName, s.XName, len(bars), buf.Len())
	return &domainchart.Rendered{Kind: domainchart.KindBar, ContentType: ContentTypePNG, Data: buf.Bytes()}, nil
}

// linePoints keeps points with a y value and, on continuous axes, an x value
func linePoints(s domainchart.Series) []point {
	pts := make([]point, 0, s.Len())
	for i, x := range s.Index {
		y := s.Values[i]
		if math.IsNaN(y) {
			continue
		}
		p := point{y: y, label: label(x)}
		switch s.XKind {
		case table.KindNumeric:
			f, ok := x.Float()
			if !ok {
				continue
			}
			p.x = f
		case table.KindTemporal:
			t, ok := x.Time()
			if !ok {
				continue
			}
			p.x = float64(t.UnixNano())
		default:
			p.x = float64(len(pts))
		}
		pts = append(pts, p)
	}
	return pts
}

func label(v table.Value) string {
	if v.Missing {
		return table.MissingKey
	}
	return v.String()
}

// positionalTicks labels at most maxTicks evenly spaced positions
func positionalTicks(pts []point) []chart.Tick {
	stride := 1
	if len(pts) > maxTicks {
		stride = int(math.Ceil(float64(len(pts)) / maxTicks))
	}
	var ticks []chart.Tick
	for i := 0; i < len(pts); i += stride {
		ticks = append(ticks, chart.Tick{Value: pts[i].x, Label: pts[i].label})
	}
	return ticks
}

// timeFormatter picks a date-only layout when no point carries a time of day
func timeFormatter(xs []float64) chart.ValueFormatter {
	layout := "2006-01-02"
	for _, x := range xs {
		t := time.Unix(0, int64(x)).UTC()
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
			layout = "2006-01-02 15:04"
			break
		}
	}
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return time.Unix(0, int64(f)).UTC().Format(layout)
		}
		return fmt.Sprintf("%v", v)
	}
}

// paddedRange returns bounds that are never zero width. Continuous data gets
// five percent headroom; positional data gets half a slot on each side.
func paddedRange(values []float64, continuous bool) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !continuous {
		return lo - 0.5, hi + 0.5
	}
	if hi == lo {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		return lo - pad, hi + pad
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// barGeometry fits n bars into width
func barGeometry(width, n int) (barWidth, spacing int) {
	usable := width - 120
	if usable < n*3 {
		usable = n * 3
	}
	slot := usable / n
	spacing = slot / 4
	barWidth = slot - spacing
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 2 {
		barWidth = 2
	}
	if spacing < 1 {
		spacing = 1
	}
	return barWidth, spacing
}
