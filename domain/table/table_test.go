package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func citySales() *Table {
	return MustNew(
		&Column{Name: "city", Kind: KindText, Values: []Value{NewText("NY"), NewText("LA"), NewText("NY")}},
		&Column{Name: "sales", Kind: KindNumeric, Values: []Value{NewNumber(10), NewNumber(5), NewNumber(20)}},
	)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(
		&Column{Name: "a", Values: []Value{NewNumber(1)}},
		&Column{Name: "a", Values: []Value{NewNumber(2)}},
	)
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New(
		&Column{Name: "a", Values: []Value{NewNumber(1)}},
		&Column{Name: "b", Values: []Value{NewNumber(1), NewNumber(2)}},
	)
	assert.ErrorIs(t, err, ErrRaggedColumns)
}

func TestPreview(t *testing.T) {
	values := make([]Value, 12)
	for i := range values {
		values[i] = NewNumber(float64(i))
	}
	tbl := MustNew(
		&Column{Name: "n", Kind: KindNumeric, Values: values},
		&Column{Name: "m", Kind: KindNumeric, Values: values},
	)

	for _, n := range []int{0, 5, 3, 100} {
		p := tbl.Preview(n)
		assert.LessOrEqual(t, p.NumRows(), 12)
		assert.Equal(t, tbl.Columns(), p.Columns())
	}
	assert.Equal(t, DefaultPreviewRows, tbl.Preview(0).NumRows())
	assert.Equal(t, 3, tbl.Preview(3).NumRows())
	assert.Equal(t, 12, tbl.Preview(100).NumRows())

	first, _ := tbl.Preview(5).Column("n")
	assert.Equal(t, "4", first.Values[4].Key())
}

func TestUniqueValues_FirstSeenOrder(t *testing.T) {
	tbl := MustNew(&Column{Name: "c", Kind: KindText, Values: []Value{
		NewText("b"), NewMissing(KindText), NewText("a"), NewText("b"), NewMissing(KindText),
	}})

	unique, err := tbl.UniqueValues("c")
	require.NoError(t, err)
	keys := make([]string, len(unique))
	for i, v := range unique {
		keys[i] = v.Key()
	}
	assert.Equal(t, []string{"b", MissingKey, "a"}, keys)

	_, err = tbl.UniqueValues("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestValue_Equal(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, NewNumber(1).Equal(NewNumber(1.0)))
	assert.False(t, NewNumber(1).Equal(NewText("1")))
	assert.True(t, NewTime(day).Equal(NewTime(day.In(time.FixedZone("x", 3600)))))
	assert.True(t, NewMissing(KindText).Equal(NewMissing(KindText)))
	assert.False(t, NewMissing(KindText).Equal(NewText("")))
	assert.True(t, NewBool(true).Equal(NewBool(true)))
}

func TestValue_KeyAndString(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2.5", NewNumber(2.5).Key())
	assert.Equal(t, "0", NewNumber(math.Copysign(0, -1)).Key())
	assert.Equal(t, "2024-01-02", NewTime(day).String())
	assert.Equal(t, "2024-01-02 13:30:00", NewTime(day.Add(13*time.Hour+30*time.Minute)).String())
	assert.Equal(t, "true", NewBool(true).String())
	assert.Equal(t, "", NewMissing(KindNumeric).String())
	assert.Equal(t, MissingKey, NewMissing(KindNumeric).Key())
}

func TestTable_Accessors(t *testing.T) {
	tbl := citySales()

	assert.Equal(t, 2, tbl.NumColumns())
	assert.True(t, tbl.HasColumn("city"))
	assert.False(t, tbl.HasColumn("country"))

	kind, err := tbl.Kind("sales")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, kind)

	row := tbl.Row(1)
	assert.Equal(t, "LA", row[0].String())
	assert.Len(t, tbl.Rows(), 3)

	sub := tbl.Take([]int{2, 0})
	assert.Equal(t, "20", sub.Row(0)[1].Key())
}

func TestFiltered_Count(t *testing.T) {
	var nilFiltered *Filtered
	assert.Equal(t, 0, nilFiltered.Count())
	assert.Equal(t, 3, Unfiltered(citySales()).Count())
}

func TestErrors(t *testing.T) {
	assert.True(t, IsSelectionError(NewUnknownColumnError("x")))
	assert.True(t, IsSelectionError(NewNotNumericError("x")))
	assert.True(t, IsLoadError(NewParseError(assert.AnError)))
	assert.False(t, IsLoadError(NewPlottingError(assert.AnError)))
	assert.Contains(t, NewNotNumericError("city").Error(), `"city"`)
}
