package domain

import (
	"fmt"
)

// ColumnKind is the semantic kind inferred for a column from its data.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindText        ColumnKind = "text"
)

const (
	// maxCategories caps the distinct values a categorical column may hold
	maxCategories = 50
)

// Column is a named, positionally aligned list of cells.
type Column struct {
	Name  string     `json:"name"`
	Kind  ColumnKind `json:"kind"`
	Cells []Cell     `json:"-"`
}

// Row is a record view addressable by column name.
type Row map[string]Cell

// Table is an ordered collection of equal-length columns.
// Tables are treated as values: every operation that changes rows or columns
// returns a new Table and leaves the receiver untouched.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns, inferring each column's kind when it
// is empty. All columns must have the same length and unique names.
func NewTable(columns []Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if i == 0 {
			t.rows = len(col.Cells)
		} else if len(col.Cells) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Cells), t.rows)
		}
		if col.Kind == "" {
			col.Kind = InferKind(col.Cells)
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustTable is NewTable for fixtures; it panics on invalid input.
func MustTable(columns []Column) *Table {
	t, err := NewTable(columns)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Columns returns the columns in order. Callers must not modify the cells.
func (t *Table) Columns() []Column {
	if t == nil {
		return nil
	}
	return t.columns
}

// ColumnNames returns the header names in order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	if t == nil || name == "" {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	if !t.HasColumn(name) {
		return Column{}, false
	}
	return t.columns[t.index[name]], true
}

// Row returns row i as a map view.
func (t *Table) Row(i int) Row {
	row := make(Row, len(t.columns))
	for _, c := range t.columns {
		row[c.Name] = c.Cells[i]
	}
	return row
}

// Rows returns every row as a positional slice in column order.
func (t *Table) Rows() [][]Cell {
	if t == nil {
		return nil
	}
	out := make([][]Cell, t.rows)
	for i := 0; i < t.rows; i++ {
		row := make([]Cell, len(t.columns))
		for j, c := range t.columns {
			row[j] = c.Cells[i]
		}
		out[i] = row
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    t.rows,
	}
	for i, c := range t.columns {
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		out.columns[i] = Column{Name: c.Name, Kind: c.Kind, Cells: cells}
		out.index[c.Name] = i
	}
	return out
}

// Select returns a new table holding only the given rows, in the given order.
// Column kinds are carried over rather than re-inferred.
func (t *Table) Select(rows []int) *Table {
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    len(rows),
	}
	for i, c := range t.columns {
		cells := make([]Cell, len(rows))
		for j, r := range rows {
			cells[j] = c.Cells[r]
		}
		out.columns[i] = Column{Name: c.Name, Kind: c.Kind, Cells: cells}
		out.index[c.Name] = i
	}
	return out
}

// WithColumn returns a copy of the table with col appended, or replacing an
// existing column of the same name in place.
func (t *Table) WithColumn(col Column) (*Table, error) {
	if len(col.Cells) != t.Len() {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Cells), t.Len())
	}
	if col.Kind == "" {
		col.Kind = InferKind(col.Cells)
	}
	out := t.Clone()
	if i, ok := out.index[col.Name]; ok {
		out.columns[i] = col
		return out, nil
	}
	out.index[col.Name] = len(out.columns)
	out.columns = append(out.columns, col)
	return out, nil
}

// InferKind classifies a column from its cells. A column without any values
// is numeric-with-missing.
func InferKind(cells []Cell) ColumnKind {
	present := 0
	numeric := 0
	distinct := make(map[string]struct{})
	for _, c := range cells {
		if c.Missing {
			continue
		}
		present++
		if Coerce(c).Valid {
			numeric++
		}
		if len(distinct) <= maxCategories {
			distinct[c.Raw] = struct{}{}
		}
	}

	switch {
	case present == numeric:
		return KindNumeric
	case present <= 2:
		return KindCategorical
	case len(distinct) <= maxCategories && len(distinct)*2 <= present:
		return KindCategorical
	default:
		return KindText
	}
}
