package table

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the type tag assigned to a column once, at load time
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindText        Kind = "text"
	KindCategorical Kind = "categorical"
	KindTemporal    Kind = "temporal"
	KindBoolean     Kind = "boolean"
)

// IsNumeric reports whether values of this kind can be plotted on a value axis
func (k Kind) IsNumeric() bool {
	return k == KindNumeric
}

// MissingKey is the canonical key of a missing cell
const MissingKey = "(missing)"

// Value is a single typed cell
type Value struct {
	Kind    Kind
	Missing bool

	num  float64
	str  string
	ts   time.Time
	flag bool
}

// NewNumber creates a numeric value
func NewNumber(f float64) Value {
	return Value{Kind: KindNumeric, num: f}
}

// NewText creates a text value. Categorical columns use NewCategory.
func NewText(s string) Value {
	return Value{Kind: KindText, str: s}
}

// NewCategory creates a categorical value
func NewCategory(s string) Value {
	return Value{Kind: KindCategorical, str: s}
}

// NewTime creates a temporal value
func NewTime(t time.Time) Value {
	return Value{Kind: KindTemporal, ts: t}
}

// NewBool creates a boolean value
func NewBool(b bool) Value {
	return Value{Kind: KindBoolean, flag: b}
}

// NewMissing creates a missing value in a column of the given kind
func NewMissing(kind Kind) Value {
	return Value{Kind: kind, Missing: true}
}

// Float returns the numeric payload; ok is false for missing or non-numeric values
func (v Value) Float() (float64, bool) {
	if v.Missing || v.Kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// Time returns the temporal payload
func (v Value) Time() (time.Time, bool) {
	if v.Missing || v.Kind != KindTemporal {
		return time.Time{}, false
	}
	return v.ts, true
}

// Bool returns the boolean payload
func (v Value) Bool() (bool, bool) {
	if v.Missing || v.Kind != KindBoolean {
		return false, false
	}
	return v.flag, true
}

// Text returns the string payload of text and categorical values
func (v Value) Text() (string, bool) {
	if v.Missing || (v.Kind != KindText && v.Kind != KindCategorical) {
		return "", false
	}
	return v.str, true
}

// Key returns the canonical string form used for selection lists and lookups.
// Two values of the same kind are Equal iff their keys match.
func (v Value) Key() string {
	if v.Missing {
		return MissingKey
	}
	switch v.Kind {
	case KindNumeric:
		n := v.num
		if n == 0 {
			// folds -0 into 0
			n = 0
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case KindTemporal:
		return v.ts.UTC().Format(time.RFC3339Nano)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	default:
		return v.str
	}
}

// String renders the value for display
func (v Value) String() string {
	if v.Missing {
		return ""
	}
	if v.Kind == KindTemporal {
		if v.ts.Hour() == 0 && v.ts.Minute() == 0 && v.ts.Second() == 0 && v.ts.Nanosecond() == 0 {
			return v.ts.Format("2006-01-02")
		}
		return v.ts.Format("2006-01-02 15:04:05")
	}
	return v.Key()
}

// Equal compares two values using the native semantics of their kind:
// numeric equality for numbers, exact match for text, instant equality for times.
// Missing equals missing.
func (v Value) Equal(o Value) bool {
	if v.Missing || o.Missing {
		return v.Missing && o.Missing
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumeric:
		return v.num == o.num
	case KindTemporal:
		return v.ts.Equal(o.ts)
	case KindBoolean:
		return v.flag == o.flag
	default:
		return v.str == o.str
	}
}

// GoString keeps test failure output readable
func (v Value) GoString() string {
	return fmt.Sprintf("table.Value{%s:%q}", v.Kind, v.Key())
}

// Column is a named, typed sequence of values
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Len returns the number of rows in the column
func (c *Column) Len() int {
	return len(c.Values)
}

// Predicate selects rows whose Column value equals Value
type Predicate struct {
	Column string
	Value  Value
}

// String describes the predicate for labels and logs
func (p Predicate) String() string {
	return fmt.Sprintf("%s == %s", p.Column, p.Value.Key())
}
