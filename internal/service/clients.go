package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/internal/store"
	"github.com/samandr77/microservices/claims/pkg/logger"
)

func (s *Service) GetClient(ctx context.Context, number string) (entity.Client, error) {
	number = entity.CanonicalKey(number)

	tbl, err := s.readClients(ctx)
	if err != nil {
		return entity.Client{}, err
	}

	c, ok := findClient(tbl, number)
	if !ok {
		return entity.Client{}, fmt.Errorf("%w: client %s", entity.ErrNotFound, number)
	}

	return c, nil
}

func (s *Service) CreateClient(ctx context.Context, c entity.Client) (entity.Client, error) {
	c = normalizeClient(c)

	if c.Number == "" || c.Name == "" {
		return entity.Client{}, fmt.Errorf("%w: client number and name are required", entity.ErrClientRequiredFieldsMissing)
	}

	ctx = logger.WithClientNumber(ctx, c.Number)

	unlock := s.locks.Lock(c.Number)
	defer unlock()

	tbl, err := s.readClients(ctx)
	if err != nil {
		return entity.Client{}, err
	}

	if _, ok := findClient(tbl, c.Number); ok {
		return entity.Client{}, fmt.Errorf("%w: client %s", entity.ErrAlreadyExists, c.Number)
	}

	c.Ref, err = s.store.AppendRow(ctx, s.opts.ClientsTable, tbl.Columns, tbl.Values(clientValues(c)))
	if err != nil {
		return entity.Client{}, fmt.Errorf("append client: %w", err)
	}

	slog.InfoContext(ctx, "client created")

	return c, nil
}

// UpdateClient writes the changed fields of a client in one update call.
func (s *Service) UpdateClient(ctx context.Context, number string, upd entity.ClientUpdate) (entity.Client, error) {
	number = entity.CanonicalKey(number)
	if upd.IsEmpty() {
		return entity.Client{}, fmt.Errorf("%w: nothing to update", entity.ErrInvalidArgument)
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return entity.Client{}, fmt.Errorf("%w: name cannot be empty", entity.ErrClientRequiredFieldsMissing)
	}

	ctx = logger.WithClientNumber(ctx, number)

	tbl, err := s.readClients(ctx)
	if err != nil {
		return entity.Client{}, err
	}

	c, ok := findClient(tbl, number)
	if !ok {
		return entity.Client{}, fmt.Errorf("%w: client %s", entity.ErrNotFound, number)
	}

	var updates []entity.CellUpdate

	set := func(column string, value *string, field *string, norm func(string) string) {
		if value == nil {
			return
		}

		*field = norm(*value)
		updates = append(updates, entity.CellUpdate{Ref: c.Ref, Column: column, Value: *field})
	}

	set(entity.ColSector, upd.Sector, &c.Sector, upper)
	set(entity.ColName, upd.Name, &c.Name, upper)
	set(entity.ColAddress, upd.Address, &c.Address, upper)
	set(entity.ColPhone, upd.Phone, &c.Phone, strings.TrimSpace)
	set(entity.ColSealNumber, upd.SealNumber, &c.SealNumber, func(v string) string { return entity.CanonicalKey(v) })

	err = s.store.UpdateCells(ctx, s.opts.ClientsTable, tbl.Columns, updates)
	if err != nil {
		return entity.Client{}, fmt.Errorf("update client %s: %w", number, err)
	}

	slog.InfoContext(ctx, "client updated", "fields", len(updates))

	return c, nil
}

// ImportClients appends the clients whose numbers are not stored yet in one batch call
// and returns how many were added.
func (s *Service) ImportClients(ctx context.Context, clients []entity.Client) (int, error) {
	normalized := make([]entity.Client, 0, len(clients))

	for i, c := range clients {
		c = normalizeClient(c)
		if c.Number == "" || c.Name == "" {
			return 0, fmt.Errorf("%w: entry %d needs client number and name", entity.ErrClientRequiredFieldsMissing, i)
		}

		normalized = append(normalized, c)
	}

	tbl, err := s.readClients(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(tbl.Rows)+len(normalized))
	for _, r := range tbl.Rows {
		seen[r.Text(entity.ColClientNumber)] = struct{}{}
	}

	rows := make([][]any, 0, len(normalized))

	for _, c := range normalized {
		if _, ok := seen[c.Number]; ok {
			continue
		}

		seen[c.Number] = struct{}{}
		rows = append(rows, tbl.Values(clientValues(c)))
	}

	err = s.store.WriteBatch(ctx, s.opts.ClientsTable, tbl.Columns, rows, store.BatchAppend)
	if err != nil {
		return 0, fmt.Errorf("import clients: %w", err)
	}

	slog.InfoContext(ctx, "clients imported", "received", len(clients), "added", len(rows))

	return len(rows), nil
}
