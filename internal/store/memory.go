package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samandr77/microservices/claims/internal/entity"
)

// MemoryBackend keeps tables in process, addressed like a spreadsheet: a row's ref is its
// zero-based position below the header.
type MemoryBackend struct {
	mu       sync.Mutex
	tables   map[string]*memTable
	failures []failure
}

// Op names a backend call for fault injection.
type Op string

const (
	OpFetch      Op = "fetch"
	OpAppend     Op = "append"
	OpAppendMany Op = "append many"
	OpReplace    Op = "replace"
	OpUpdate     Op = "update"
)

type failure struct {
	op    Op
	table string
	err   error
}

type memTable struct {
	header []string
	rows   [][]any
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables: make(map[string]*memTable),
	}
}

// Seed overwrites table with raw header and rows, for tests that need drifted data.
func (m *MemoryBackend) Seed(table string, header []string, rows ...[]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &memTable{header: slices.Clone(header)}
	for _, r := range rows {
		t.rows = append(t.rows, slices.Clone(r))
	}

	m.tables[table] = t
}

// FailNext makes the next backend call return err.
func (m *MemoryBackend) FailNext(err error) {
	m.FailOn("", "", err)
}

// FailOn makes the next op call against table return err. Empty op or table match any.
func (m *MemoryBackend) FailOn(op Op, table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures = append(m.failures, failure{op: op, table: table, err: err})
}

// Len reports the number of data rows in table.
func (m *MemoryBackend) Len(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return 0
	}

	return len(t.rows)
}

func (m *MemoryBackend) Fetch(_ context.Context, table string) (Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.popFailure(OpFetch, table); err != nil {
		return Raw{}, err
	}

	t, ok := m.tables[table]
	if !ok {
		return Raw{}, nil
	}

	raw := Raw{
		Header: slices.Clone(t.header),
		Rows:   make([]RawRow, 0, len(t.rows)),
	}

	for i, r := range t.rows {
		raw.Rows = append(raw.Rows, RawRow{Ref: int64(i), Values: slices.Clone(r)})
	}

	return raw, nil
}

func (m *MemoryBackend) Append(_ context.Context, table string, columns []string, row []any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.popFailure(OpAppend, table); err != nil {
		return 0, err
	}

	t := m.table(table)
	t.rows = append(t.rows, t.layout(columns, row))

	return int64(len(t.rows) - 1), nil
}

func (m *MemoryBackend) AppendMany(_ context.Context, table string, columns []string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.popFailure(OpAppendMany, table); err != nil {
		return err
	}

	t := m.table(table)
	for _, r := range rows {
		t.rows = append(t.rows, t.layout(columns, r))
	}

	return nil
}

func (m *MemoryBackend) Replace(_ context.Context, table string, columns []string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.popFailure(OpReplace, table); err != nil {
		return err
	}

	t := &memTable{header: slices.Clone(columns)}
	for _, r := range rows {
		t.rows = append(t.rows, t.layout(columns, r))
	}

	m.tables[table] = t

	return nil
}

func (m *MemoryBackend) Update(_ context.Context, table string, _ []string, updates []entity.CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.popFailure(OpUpdate, table); err != nil {
		return err
	}

	t := m.table(table)

	var failed []FailedUpdate

	for i, u := range updates {
		if u.Ref < 0 || u.Ref >= int64(len(t.rows)) {
			failed = append(failed, FailedUpdate{Index: i, Ref: u.Ref, Column: u.Column, Reason: "row does not exist"})
		}
	}

	if len(failed) > 0 {
		return &UpdateError{Failed: failed}
	}

	for _, u := range updates {
		idx := t.column(u.Column)
		row := t.rows[u.Ref]

		for len(row) <= idx {
			row = append(row, "")
		}

		row[idx] = u.Value
		t.rows[u.Ref] = row
	}

	return nil
}

func (m *MemoryBackend) popFailure(op Op, table string) error {
	for i, f := range m.failures {
		if (f.op == "" || f.op == op) && (f.table == "" || f.table == table) {
			m.failures = slices.Delete(m.failures, i, i+1)
			return fmt.Errorf("memory backend %s %s: %w", op, table, f.err)
		}
	}

	return nil
}

func (m *MemoryBackend) table(name string) *memTable {
	t, ok := m.tables[name]
	if !ok {
		t = &memTable{}
		m.tables[name] = t
	}

	return t
}

// column returns the position of name, adding it to the header when missing.
func (t *memTable) column(name string) int {
	idx := slices.Index(t.header, name)
	if idx >= 0 {
		return idx
	}

	t.header = append(t.header, name)

	return len(t.header) - 1
}

func (t *memTable) layout(columns []string, values []any) []any {
	row := make([]any, len(t.header))
	for i := range row {
		row[i] = ""
	}

	for i, c := range columns {
		idx := t.column(c)

		for len(row) <= idx {
			row = append(row, "")
		}

		if i < len(values) {
			row[idx] = values[i]
		}
	}

	return row
}
