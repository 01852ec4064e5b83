package entity

import "slices"

// Row is one record of an external table. Ref locates it in the store: the primary key for
// relational tables, the zero-based data row index for spreadsheets.
type Row struct {
	Ref    int64
	Values map[string]any
}

func (r Row) Text(column string) string {
	return Text(r.Values[column])
}

type Table struct {
	Columns []string
	Rows    []Row
}

func NewTable(columns []string) Table {
	return Table{
		Columns: slices.Clone(columns),
		Rows:    []Row{},
	}
}

func (t Table) HasColumn(column string) bool {
	return slices.Contains(t.Columns, column)
}

// Row returns the row stored under ref.
func (t Table) Row(ref int64) (Row, bool) {
	for _, r := range t.Rows {
		if r.Ref == ref {
			return r, true
		}
	}

	return Row{}, false
}

// Values lays the cells of values out in column order, "" for absent cells.
func (t Table) Values(values map[string]any) []any {
	out := make([]any, len(t.Columns))

	for i, c := range t.Columns {
		v, ok := values[c]
		if !ok || v == nil {
			out[i] = ""
			continue
		}

		out[i] = v
	}

	return out
}

// CellUpdate addresses a single cell by row ref and column name.
type CellUpdate struct {
	Ref    int64
	Column string
	Value  any
}
