package table

import "fmt"

// DefaultPreviewRows is the preview size used when none is configured
const DefaultPreviewRows = 5

// Table is an immutable, column-oriented dataset. All columns have equal length.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns, checking names and lengths
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		t.index[col.Name] = i
		if i == 0 {
			t.rows = col.Len()
			continue
		}
		if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, col.Name, col.Len(), t.rows)
		}
	}
	return t, nil
}

// MustNew is New for fixtures that are known to be well formed
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the column count
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Columns returns column names in file order
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether name is one of the table's columns
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, NewUnknownColumnError(name)
	}
	return t.columns[i], nil
}

// Kind returns the tag of the named column
func (t *Table) Kind(name string) (Kind, error) {
	col, err := t.Column(name)
	if err != nil {
		return "", err
	}
	return col.Kind, nil
}

// Row returns the values of row i across all columns
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Values[i]
	}
	return row
}

// Rows returns every row, for display
func (t *Table) Rows() [][]Value {
	rows := make([][]Value, t.rows)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// UniqueValues returns the distinct values of a column in first-seen order.
// A missing value is included once if any cell is missing.
func (t *Table) UniqueValues(name string) ([]Value, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var unique []Value
	for _, v := range col.Values {
		key := v.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, v)
	}
	return unique, nil
}

// Preview returns the first n rows with all columns. n <= 0 uses DefaultPreviewRows.
func (t *Table) Preview(n int) *Table {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	if n > t.rows {
		n = t.rows
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return t.Take(indices)
}

// Take returns a new table holding the given rows, in the given order
func (t *Table) Take(indices []int) *Table {
	cols := make([]*Column, len(t.columns))
	for j, col := range t.columns {
		values := make([]Value, len(indices))
		for k, i := range indices {
			values[k] = col.Values[i]
		}
		cols[j] = &Column{Name: col.Name, Kind: col.Kind, Values: values}
	}
	out := &Table{columns: cols, index: t.index, rows: len(indices)}
	return out
}

// Filtered is a table derived from a source table by one predicate
type Filtered struct {
	*Table
	Predicate Predicate
}

// Count returns the number of matching rows
func (f *Filtered) Count() int {
	if f == nil || f.Table == nil {
		return 0
	}
	return f.NumRows()
}

// Unfiltered wraps a whole table as a filtered view with no predicate applied
func Unfiltered(t *Table) *Filtered {
	return &Filtered{Table: t}
}
