package render

import (
	"bytes"
	"math"
	"testing"
	"time"

	domainchart "sheetview/domain/chart"
	"sheetview/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func series(xKind table.Kind, index []table.Value, ys ...float64) domainchart.Series {
	return domainchart.Series{XName: "x", YName: "y", XKind: xKind, Index: index, Values: ys}
}

func texts(ss ...string) []table.Value {
	out := make([]table.Value, len(ss))
	for i, s := range ss {
		out[i] = table.NewText(s)
	}
	return out
}

func numbers(xs ...float64) []table.Value {
	out := make([]table.Value, len(xs))
	for i, x := range xs {
		out[i] = table.NewNumber(x)
	}
	return out
}

func assertPNG(t *testing.T, out *domainchart.Rendered, kind domainchart.Kind) {
	t.Helper()
	require.NotNil(t, out)
	assert.False(t, out.NoData)
	assert.Equal(t, kind, out.Kind)
	assert.Equal(t, ContentTypePNG, out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Data, pngSignature), "output is not a PNG")
}

func TestRenderLine(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		series domainchart.Series
	}{
		{"numeric x", series(table.KindNumeric, numbers(1, 2, 3), 10, 5, 20)},
		{"text x", series(table.KindText, texts("NY", "LA", "NY"), 10, 5, 20)},
		{"temporal x", series(table.KindTemporal, []table.Value{table.NewTime(day), table.NewTime(day.AddDate(0, 0, 1))}, 1, 2)},
		{"single point", series(table.KindNumeric, numbers(4), 7)},
		{"constant y", series(table.KindText, texts("a", "b", "c"), 3, 3, 3)},
		{"gap in y", series(table.KindNumeric, numbers(1, 2, 3), 1, math.NaN(), 3)},
	}

	r := NewRenderer(640, 320)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.RenderLine(tt.series)
			require.NoError(t, err)
			assertPNG(t, out, domainchart.KindLine)
		})
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		name   string
		series domainchart.Series
	}{
		{"positive", series(table.KindText, texts("NY", "LA", "NY"), 10, 5, 20)},
		{"negative", series(table.KindText, texts("a", "b"), -3, 4)},
		{"single bar", series(table.KindNumeric, numbers(1), 0)},
	}

	r := NewRenderer(640, 320)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.RenderBar(tt.series)
			require.NoError(t, err)
			assertPNG(t, out, domainchart.KindBar)
		})
	}
}

func TestRender_NothingToDraw(t *testing.T) {
	r := NewRenderer(640, 320)

	out, err := r.RenderLine(series(table.KindNumeric, []table.Value{table.NewMissing(table.KindNumeric)}, 1))
	require.NoError(t, err)
	assert.True(t, out.NoData)

	out, err = r.RenderBar(series(table.KindText, texts("a"), math.NaN()))
	require.NoError(t, err)
	assert.True(t, out.NoData)
}

func TestPaddedRange(t *testing.T) {
	lo, hi := paddedRange([]float64{0}, true)
	assert.Less(t, lo, hi)

	lo, hi = paddedRange([]float64{5, 5}, true)
	assert.Equal(t, 4.5, lo)
	assert.Equal(t, 5.5, hi)

	lo, hi = paddedRange([]float64{0, 1, 2}, false)
	assert.Equal(t, -0.5, lo)
	assert.Equal(t, 2.5, hi)
}

func TestPositionalTicksCapped(t *testing.T) {
	pts := make([]point, 95)
	for i := range pts {
		pts[i] = point{x: float64(i), label: "p"}
	}
	assert.LessOrEqual(t, len(positionalTicks(pts)), maxTicks)
}
