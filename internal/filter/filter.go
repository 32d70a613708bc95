package filter

import (
	"sheetview/domain/table"
	"sheetview/internal"
)

// ResolveValue maps a canonical key coming from the presentation layer back
// to the observed value it names. Only values present in the column resolve.
func ResolveValue(t *table.Table, column, key string) (table.Value, error) {
	unique, err := t.UniqueValues(column)
	if err != nil {
		return table.Value{}, err
	}
	for _, v := range unique {
		if v.Key() == key {
			return v, nil
		}
	}
	return table.Value{}, table.NewUnknownValueError(column, key)
}

// Apply keeps the rows whose value in p.Column equals p.Value under the
// column's native equality. No match yields an empty table, not an error.
func Apply(t *table.Table, p table.Predicate) (*table.Filtered, error) {
	col, err := t.Column(p.Column)
	if err != nil {
		return nil, err
	}

	// Reject values the column never holds even though the UI only offers observed ones
	if _, err := ResolveValue(t, p.Column, p.Value.Key()); err != nil {
		return nil, err
	}

	var matches []int
	for i, v := range col.Values {
		if v.Equal(p.Value) {
			matches = append(matches, i)
		}
	}

	internal.DefaultLogger.Debug("[Filter] %s matched %d of %d rows", p, len(matches), t.NumRows())
	return &table.Filtered{Table: t.Take(matches), Predicate: p}, nil
}

// ApplyKey resolves key and applies the resulting predicate
func ApplyKey(t *table.Table, column, key string) (*table.Filtered, error) {
	v, err := ResolveValue(t, column, key)
	if err != nil {
		return nil, err
	}
	return Apply(t, table.Predicate{Column: column, Value: v})
}
