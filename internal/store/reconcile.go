package store

import (
	"strings"

	"github.com/samandr77/microservices/claims/internal/entity"
)

// Reconcile turns raw store rows into a table that has every expected column. A store that
// returned nothing at all yields an empty table shaped by expected; columns the store lacks
// are added and filled with "". Rows whose cells are all blank are dropped; their refs stay
// reserved so the remaining rows keep their positions.
func Reconcile(raw Raw, expected []string) entity.Table {
	columns := make([]string, 0, len(raw.Header)+len(expected))
	seen := make(map[string]struct{}, len(raw.Header)+len(expected))

	for _, h := range raw.Header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}

		if _, ok := seen[h]; ok {
			continue
		}

		seen[h] = struct{}{}
		columns = append(columns, h)
	}

	for _, c := range expected {
		if _, ok := seen[c]; ok {
			continue
		}

		seen[c] = struct{}{}
		columns = append(columns, c)
	}

	t := entity.Table{
		Columns: columns,
		Rows:    make([]entity.Row, 0, len(raw.Rows)),
	}

	for _, r := range raw.Rows {
		if blankRow(r) {
			continue
		}

		values := make(map[string]any, len(columns))

		for i, h := range raw.Header {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}

			if _, ok := values[h]; ok {
				continue
			}

			if i < len(r.Values) && r.Values[i] != nil {
				values[h] = r.Values[i]
			} else {
				values[h] = ""
			}
		}

		for _, c := range columns {
			if _, ok := values[c]; !ok {
				values[c] = ""
			}
		}

		t.Rows = append(t.Rows, entity.Row{Ref: r.Ref, Values: values})
	}

	return t
}

func blankRow(r RawRow) bool {
	for _, v := range r.Values {
		if entity.Text(v) != "" {
			return false
		}
	}

	return true
}

// NormalizeKey returns a copy of t where every value of column is in canonical key form.
// Tables without the column are returned as they are.
func NormalizeKey(t entity.Table, column string) entity.Table {
	if !t.HasColumn(column) {
		return t
	}

	out := entity.Table{
		Columns: t.Columns,
		Rows:    make([]entity.Row, len(t.Rows)),
	}

	for i, r := range t.Rows {
		values := make(map[string]any, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}

		values[column] = entity.CanonicalKey(r.Values[column])

		out.Rows[i] = entity.Row{Ref: r.Ref, Values: values}
	}

	return out
}
