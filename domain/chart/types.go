package chart

import (
	"fmt"
	"math"
	"strings"

	"sheetview/domain/table"
)

// Kind is one of the two supported chart kinds
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Kinds lists the closed set offered to the user
var Kinds = []Kind{KindLine, KindBar}

// Label is the human-readable name of the kind
func (k Kind) Label() string {
	switch k {
	case KindLine:
		return "Line Chart"
	case KindBar:
		return "Bar Chart"
	default:
		return string(k)
	}
}

// ParseKind accepts "line", "bar" and the labels "Line Chart", "Bar Chart"
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "line chart":
		return KindLine, nil
	case "bar", "bar chart":
		return KindBar, nil
	}
	return "", fmt.Errorf("%w: %q", table.ErrUnsupportedKind, s)
}

// Spec is a user's plot request
type Spec struct {
	X    string `json:"x"`
	Y    string `json:"y"`
	Kind Kind   `json:"kind"`
}

// Series is a y column indexed by the x column's values, in row order
type Series struct {
	XName  string
	YName  string
	XKind  table.Kind
	Index  []table.Value
	Values []float64 // NaN where y is missing

	// DuplicateIndex is set when the x column repeats a value; all points are kept
	DuplicateIndex bool
}

// Len returns the number of points, plottable or not
func (s Series) Len() int {
	return len(s.Index)
}

// Plottable returns the number of points with a y value
func (s Series) Plottable() int {
	n := 0
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Point is one plottable pair, exposed for JSON clients
type Point struct {
	X string   `json:"x"`
	Y *float64 `json:"y"`
}

// Points returns the series as display pairs
func (s Series) Points() []Point {
	pts := make([]Point, len(s.Index))
	for i, x := range s.Index {
		pts[i].X = x.String()
		if !math.IsNaN(s.Values[i]) {
			y := s.Values[i]
			pts[i].Y = &y
		}
	}
	return pts
}

// Rendered is the output of the rendering collaborator
type Rendered struct {
	Kind        Kind
	ContentType string
	Data        []byte
	// NoData is set when there was nothing to draw; Data is empty
	NoData bool
}
