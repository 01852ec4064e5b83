package store_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/internal/store"
)

func TestReconcile(t *testing.T) {
	expected := []string{"client_number", "name", "phone"}

	tests := []struct {
		name string
		raw  store.Raw
		want entity.Table
	}{
		{
			name: "nothing at all",
			raw:  store.Raw{},
			want: entity.Table{Columns: expected, Rows: []entity.Row{}},
		},
		{
			name: "header only",
			raw:  store.Raw{Header: []string{"client_number", "name"}},
			want: entity.Table{Columns: expected, Rows: []entity.Row{}},
		},
		{
			name: "missing column filled",
			raw: store.Raw{
				Header: []string{"client_number", "name"},
				Rows:   []store.RawRow{{Ref: 0, Values: []any{"42", "ANA"}}},
			},
			want: entity.Table{
				Columns: expected,
				Rows: []entity.Row{
					{Ref: 0, Values: map[string]any{"client_number": "42", "name": "ANA", "phone": ""}},
				},
			},
		},
		{
			name: "extra columns kept, short rows padded",
			raw: store.Raw{
				Header: []string{"name", "notes", "client_number", "phone"},
				Rows:   []store.RawRow{{Ref: 3, Values: []any{"BETO", "x"}}},
			},
			want: entity.Table{
				Columns: []string{"name", "notes", "client_number", "phone"},
				Rows: []entity.Row{
					{Ref: 3, Values: map[string]any{"name": "BETO", "notes": "x", "client_number": "", "phone": ""}},
				},
			},
		},
		{
			name: "blank and duplicate headers dropped",
			raw: store.Raw{
				Header: []string{" client_number ", "", "client_number", "name", "phone"},
				Rows:   []store.RawRow{{Ref: 1, Values: []any{7, "junk", 8, nil, "555"}}},
			},
			want: entity.Table{
				Columns: expected,
				Rows: []entity.Row{
					{Ref: 1, Values: map[string]any{"client_number": 7, "name": "", "phone": "555"}},
				},
			},
		},
		{
			name: "blank rows dropped, refs kept",
			raw: store.Raw{
				Header: []string{"client_number", "name", "phone"},
				Rows: []store.RawRow{
					{Ref: 0, Values: []any{}},
					{Ref: 1, Values: []any{"", nil, "  "}},
					{Ref: 2, Values: []any{"42", "ANA"}},
				},
			},
			want: entity.Table{
				Columns: expected,
				Rows: []entity.Row{
					{Ref: 2, Values: map[string]any{"client_number": "42", "name": "ANA", "phone": ""}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.Reconcile(tt.raw, expected)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	in := entity.Table{
		Columns: []string{"client_number", "name"},
		Rows: []entity.Row{
			{Ref: 0, Values: map[string]any{"client_number": "00123", "name": "A"}},
			{Ref: 1, Values: map[string]any{"client_number": 123, "name": "B"}},
			{Ref: 2, Values: map[string]any{"client_number": 123.0, "name": "C"}},
			{Ref: 3, Values: map[string]any{"client_number": " ab-7 ", "name": "D"}},
		},
	}

	once := store.NormalizeKey(in, "client_number")
	twice := store.NormalizeKey(once, "client_number")

	var keys []string
	for _, r := range once.Rows {
		keys = append(keys, r.Text("client_number"))
	}

	require.Equal(t, []string{"123", "123", "123", "ab-7"}, keys)
	require.Empty(t, cmp.Diff(once, twice))
	require.Equal(t, "00123", in.Rows[0].Values["client_number"], "input must not be modified")
}

func TestNormalizeKey_MissingColumn(t *testing.T) {
	in := entity.Table{
		Columns: []string{"name"},
		Rows:    []entity.Row{{Ref: 0, Values: map[string]any{"name": "A"}}},
	}

	require.Empty(t, cmp.Diff(in, store.NormalizeKey(in, "client_number")))
}
