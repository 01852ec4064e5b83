package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/internal/store"
	"github.com/samandr77/microservices/claims/pkg/ratelimit"
)

var clientCols = entity.ClientColumns()

type sleepLog struct {
	slept []time.Duration
}

func newAdapter(t *testing.T) (*store.Adapter, *store.MemoryBackend, *sleepLog) {
	t.Helper()

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	log := &sleepLog{}

	gate := ratelimit.New(1500*time.Millisecond, 2*time.Second, ratelimit.WithClock(
		func() time.Time { return now },
		func(d time.Duration) {
			log.slept = append(log.slept, d)
			now = now.Add(d)
		},
	))

	backend := store.NewMemoryBackend()

	return store.New(backend, gate, time.Second), backend, log
}

func TestAdapter_ReadTable_EmptyStore(t *testing.T) {
	a, _, _ := newAdapter(t)

	tbl, err := a.ReadTable(context.Background(), "clients", clientCols)
	require.NoError(t, err)
	require.Equal(t, clientCols, tbl.Columns)
	require.Empty(t, tbl.Rows)
}

func TestAdapter_ReadTable_RepairsSchema(t *testing.T) {
	a, backend, _ := newAdapter(t)

	backend.Seed("clients", []string{"client_number", "name"}, []any{"42", "ANA"})

	tbl, err := a.ReadTable(context.Background(), "clients", clientCols)
	require.NoError(t, err)

	for _, c := range clientCols {
		require.True(t, tbl.HasColumn(c), c)
	}

	require.Len(t, tbl.Rows, 1)
	require.Equal(t, "", tbl.Rows[0].Text(entity.ColPhone))
	require.Equal(t, "ANA", tbl.Rows[0].Text(entity.ColName))
}

func TestAdapter_ReadTable_Failure(t *testing.T) {
	a, backend, _ := newAdapter(t)

	backend.FailNext(errors.New("quota exceeded"))

	tbl, err := a.ReadTable(context.Background(), "clients", clientCols)
	require.ErrorIs(t, err, entity.ErrStoreUnavailable)
	require.Equal(t, clientCols, tbl.Columns)
	require.Empty(t, tbl.Rows)

	stats := a.Stats()
	require.EqualValues(t, 1, stats.Calls)
	require.EqualValues(t, 1, stats.Errors)
	require.Contains(t, stats.LastError, "quota exceeded")
}

func TestAdapter_AppendRow(t *testing.T) {
	a, backend, _ := newAdapter(t)
	ctx := context.Background()

	tbl, err := a.ReadTable(ctx, "clients", clientCols)
	require.NoError(t, err)

	ref, err := a.AppendRow(ctx, "clients", tbl.Columns, tbl.Values(map[string]any{
		entity.ColClientNumber: "999",
		entity.ColName:         "NEW",
	}))
	require.NoError(t, err)
	require.EqualValues(t, 0, ref)
	require.Equal(t, 1, backend.Len("clients"))

	tbl, err = a.ReadTable(ctx, "clients", clientCols)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	require.Equal(t, "999", tbl.Rows[0].Text(entity.ColClientNumber))
	require.Equal(t, "", tbl.Rows[0].Text(entity.ColSealNumber))
}

func TestAdapter_WriteBatch(t *testing.T) {
	a, backend, log := newAdapter(t)
	ctx := context.Background()

	rows := [][]any{{"1", "A"}, {"2", "B"}}
	cols := []string{entity.ColClientNumber, entity.ColName}

	require.NoError(t, a.WriteBatch(ctx, "clients", cols, rows, store.BatchAppend))
	require.NoError(t, a.WriteBatch(ctx, "clients", cols, rows, store.BatchAppend))
	require.Equal(t, 4, backend.Len("clients"))

	require.NoError(t, a.WriteBatch(ctx, "clients", cols, rows[:1], store.BatchReplace))
	require.Equal(t, 1, backend.Len("clients"))

	require.NoError(t, a.WriteBatch(ctx, "clients", cols, nil, store.BatchAppend))
	require.EqualValues(t, 3, a.Stats().Calls, "empty append is not sent")

	require.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, log.slept)
}

func TestAdapter_UpdateCells(t *testing.T) {
	a, backend, _ := newAdapter(t)
	ctx := context.Background()

	backend.Seed("clients", clientCols,
		[]any{"1", "N", "A", "", "", ""},
		[]any{"2", "S", "B", "", "", ""},
	)

	err := a.UpdateCells(ctx, "clients", clientCols, []entity.CellUpdate{
		{Ref: 1, Column: entity.ColSealNumber, Value: "S-9"},
		{Ref: 0, Column: entity.ColPhone, Value: "555"},
	})
	require.NoError(t, err)

	tbl, err := a.ReadTable(ctx, "clients", clientCols)
	require.NoError(t, err)
	require.Equal(t, "S-9", tbl.Rows[1].Text(entity.ColSealNumber))
	require.Equal(t, "555", tbl.Rows[0].Text(entity.ColPhone))
}

func TestAdapter_UpdateCells_RejectsWholeBatch(t *testing.T) {
	a, backend, _ := newAdapter(t)
	ctx := context.Background()

	backend.Seed("clients", clientCols, []any{"1", "N", "A", "", "", ""})

	err := a.UpdateCells(ctx, "clients", clientCols, []entity.CellUpdate{
		{Ref: 0, Column: entity.ColPhone, Value: "555"},
		{Ref: -1, Column: entity.ColPhone, Value: "x"},
		{Ref: 0, Column: "nope", Value: "x"},
		{Ref: 0, Column: "", Value: "x"},
	})
	require.ErrorIs(t, err, entity.ErrInvalidCellUpdate)

	var updErr *store.UpdateError
	require.ErrorAs(t, err, &updErr)
	require.Len(t, updErr.Failed, 3)
	require.Equal(t, 1, updErr.Failed[0].Index)
	require.Equal(t, 2, updErr.Failed[1].Index)
	require.Equal(t, 3, updErr.Failed[2].Index)

	require.EqualValues(t, 0, a.Stats().Calls, "rejected batch is not sent")

	tbl, err := a.ReadTable(ctx, "clients", clientCols)
	require.NoError(t, err)
	require.Equal(t, "", tbl.Rows[0].Text(entity.ColPhone))
}

func TestAdapter_UpdateCells_MissingRowIsAtomic(t *testing.T) {
	a, backend, _ := newAdapter(t)
	ctx := context.Background()

	backend.Seed("clients", clientCols, []any{"1", "N", "A", "", "", ""})

	err := a.UpdateCells(ctx, "clients", clientCols, []entity.CellUpdate{
		{Ref: 0, Column: entity.ColPhone, Value: "555"},
		{Ref: 5, Column: entity.ColPhone, Value: "x"},
	})

	var updErr *store.UpdateError
	require.ErrorAs(t, err, &updErr)
	require.NotErrorIs(t, err, entity.ErrStoreUnavailable)

	tbl, err := a.ReadTable(ctx, "clients", clientCols)
	require.NoError(t, err)
	require.Equal(t, "", tbl.Rows[0].Text(entity.ColPhone))
}

func TestAdapter_SpacingBetweenKinds(t *testing.T) {
	a, _, log := newAdapter(t)
	ctx := context.Background()
	cols := []string{entity.ColClientNumber}

	_, err := a.ReadTable(ctx, "clients", clientCols)
	require.NoError(t, err)
	_, err = a.AppendRow(ctx, "clients", cols, []any{"1"})
	require.NoError(t, err)
	require.NoError(t, a.WriteBatch(ctx, "clients", cols, [][]any{{"2"}}, store.BatchAppend))

	require.Equal(t, []time.Duration{1500 * time.Millisecond, 2 * time.Second}, log.slept)
	require.EqualValues(t, 3, a.Stats().Calls)
}
