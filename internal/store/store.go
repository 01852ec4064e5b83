// Package store mediates every read and write against the external tabular store.
//
// Calls go through the process rate gate, store faults come back as errors wrapping
// entity.ErrStoreUnavailable, and rows are reconciled against the expected column set so
// callers never see the store's schema drift.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/pkg/ratelimit"
)

// Backend is a tabular system of record: a spreadsheet or a relational table.
type Backend interface {
	// Fetch returns the header and every data row of table.
	Fetch(ctx context.Context, table string) (Raw, error)
	// Append inserts one row laid out in columns order and returns its ref.
	Append(ctx context.Context, table string, columns []string, row []any) (int64, error)
	// AppendMany inserts rows laid out in columns order.
	AppendMany(ctx context.Context, table string, columns []string, rows [][]any) error
	// Replace clears table and writes columns as header followed by rows.
	Replace(ctx context.Context, table string, columns []string, rows [][]any) error
	// Update applies all updates or none of them.
	Update(ctx context.Context, table string, columns []string, updates []entity.CellUpdate) error
}

type Raw struct {
	Header []string
	Rows   []RawRow
}

// RawRow holds cells positionally aligned with Raw.Header.
type RawRow struct {
	Ref    int64
	Values []any
}

type BatchMode int

const (
	BatchAppend BatchMode = iota
	BatchReplace
)

func (m BatchMode) String() string {
	if m == BatchReplace {
		return "replace"
	}

	return "append"
}

// FailedUpdate describes one rejected entry of an UpdateCells call.
type FailedUpdate struct {
	Index  int
	Ref    int64
	Column string
	Reason string
}

// UpdateError lists the entries that prevented an update batch from being applied.
// Nothing from the batch was written.
type UpdateError struct {
	Failed []FailedUpdate
}

func (e *UpdateError) Error() string {
	parts := make([]string, 0, len(e.Failed))

	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("#%d (row %d, column %q): %s", f.Index, f.Ref, f.Column, f.Reason))
	}

	return fmt.Sprintf("%s: %s", entity.ErrInvalidCellUpdate, strings.Join(parts, "; "))
}

func (e *UpdateError) Unwrap() error {
	return entity.ErrInvalidCellUpdate
}

type Adapter struct {
	backend  Backend
	gate     *ratelimit.Gate
	timeout  time.Duration
	statsLog *rate.Sometimes
}

func New(backend Backend, gate *ratelimit.Gate, timeout time.Duration) *Adapter {
	return &Adapter{
		backend:  backend,
		gate:     gate,
		timeout:  timeout,
		statsLog: &rate.Sometimes{Interval: time.Minute},
	}
}

// ReadTable fetches every row of table. The result always carries at least the expected
// columns, even when the fetch fails.
func (a *Adapter) ReadTable(ctx context.Context, table string, expected []string) (entity.Table, error) {
	a.gate.Throttle(false)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	raw, err := a.backend.Fetch(ctx, table)
	if err != nil {
		return entity.NewTable(expected), a.fail(ctx, "read", table, err)
	}

	a.logStats(ctx)

	return Reconcile(raw, expected), nil
}

// AppendRow inserts a single row and returns the ref the store assigned to it.
func (a *Adapter) AppendRow(ctx context.Context, table string, columns []string, row []any) (int64, error) {
	a.gate.Throttle(false)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ref, err := a.backend.Append(ctx, table, columns, row)
	if err != nil {
		return 0, a.fail(ctx, "append", table, err)
	}

	a.logStats(ctx)

	return ref, nil
}

func (a *Adapter) WriteBatch(ctx context.Context, table string, columns []string, rows [][]any, mode BatchMode) error {
	if mode == BatchAppend && len(rows) == 0 {
		return nil
	}

	a.gate.Throttle(true)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var err error

	switch mode {
	case BatchReplace:
		err = a.backend.Replace(ctx, table, columns, rows)
	default:
		err = a.backend.AppendMany(ctx, table, columns, rows)
	}

	if err != nil {
		return a.fail(ctx, "write batch "+mode.String(), table, err)
	}

	a.logStats(ctx)

	return nil
}

// UpdateCells applies targeted cell updates as one batch call. Entries that cannot be
// addressed reject the whole batch before anything is sent.
func (a *Adapter) UpdateCells(ctx context.Context, table string, columns []string, updates []entity.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	err := validateUpdates(columns, updates)
	if err != nil {
		slog.WarnContext(ctx, "rejected cell updates", "table", table, "error", err)
		return err
	}

	a.gate.Throttle(true)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err = a.backend.Update(ctx, table, columns, updates)
	if err != nil {
		return a.fail(ctx, "update cells", table, err)
	}

	a.logStats(ctx)

	return nil
}

func (a *Adapter) Stats() ratelimit.Stats {
	return a.gate.Stats()
}

func validateUpdates(columns []string, updates []entity.CellUpdate) error {
	var failed []FailedUpdate

	for i, u := range updates {
		switch {
		case u.Ref < 0:
			failed = append(failed, FailedUpdate{Index: i, Ref: u.Ref, Column: u.Column, Reason: "negative row"})
		case u.Column == "":
			failed = append(failed, FailedUpdate{Index: i, Ref: u.Ref, Column: u.Column, Reason: "empty column"})
		case !slices.Contains(columns, u.Column):
			failed = append(failed, FailedUpdate{Index: i, Ref: u.Ref, Column: u.Column, Reason: "unknown column"})
		}
	}

	if len(failed) > 0 {
		return &UpdateError{Failed: failed}
	}

	return nil
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, a.timeout)
}

func (a *Adapter) fail(ctx context.Context, op, table string, err error) error {
	a.gate.RecordError(err)

	slog.ErrorContext(ctx, "store call failed", "op", op, "table", table, "error", err)

	var updErr *UpdateError
	if errors.As(err, &updErr) {
		return updErr
	}

	return fmt.Errorf("%w: %s %s: %w", entity.ErrStoreUnavailable, op, table, err)
}

func (a *Adapter) logStats(ctx context.Context) {
	a.statsLog.Do(func() {
		s := a.gate.Stats()
		slog.InfoContext(ctx, "store api stats", "calls", s.Calls, "errors", s.Errors, "last_error", s.LastError)
	})
}
