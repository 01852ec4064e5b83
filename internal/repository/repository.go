package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/internal/store"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ErrUnknownTable = errors.New("unknown table")

// Schema is the column layout of one table, besides its bigserial id.
type Schema struct {
	Columns []string
	// Stamps lists timestamptz columns; an empty cell is stored as NULL.
	Stamps []string
}

// Repository serves the claim and client tables from Postgres. Row refs are primary keys.
type Repository struct {
	db      *pgxpool.Pool
	schemas map[string]Schema
}

var _ store.Backend = (*Repository)(nil)

func New(pool *pgxpool.Pool, schemas map[string]Schema) *Repository {
	return &Repository{
		db:      pool,
		schemas: schemas,
	}
}

// Schemas maps the configured table names to the layouts created by the migrations.
func Schemas(claimsTable, clientsTable string) map[string]Schema {
	return map[string]Schema{
		claimsTable: {
			Columns: entity.ClaimColumns(),
			Stamps:  []string{entity.ColCreatedAt, entity.ColResolvedAt},
		},
		clientsTable: {
			Columns: entity.ClientColumns(),
		},
	}
}

func (r *Repository) Fetch(ctx context.Context, table string) (store.Raw, error) {
	schema, err := r.schema(table)
	if err != nil {
		return store.Raw{}, err
	}

	q, args, err := psql.Select(append([]string{"id"}, schema.Columns...)...).
		From(table).
		OrderBy("id").
		ToSql()
	if err != nil {
		return store.Raw{}, err
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return store.Raw{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	raw := store.Raw{
		Header: slices.Clone(schema.Columns),
		Rows:   []store.RawRow{},
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return store.Raw{}, err
		}

		id, ok := values[0].(int64)
		if !ok {
			return store.Raw{}, fmt.Errorf("%s: unexpected id type %T", table, values[0])
		}

		raw.Rows = append(raw.Rows, store.RawRow{Ref: id, Values: values[1:]})
	}

	if err := rows.Err(); err != nil {
		return store.Raw{}, err
	}

	return raw, nil
}

func (r *Repository) Append(ctx context.Context, table string, columns []string, row []any) (int64, error) {
	schema, err := r.schema(table)
	if err != nil {
		return 0, err
	}

	cols, vals := schema.project(columns, row)

	q, args, err := psql.Insert(table).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64

	err = r.db.QueryRow(ctx, q, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}

	return id, nil
}

func (r *Repository) AppendMany(ctx context.Context, table string, columns []string, rows [][]any) error {
	schema, err := r.schema(table)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return insertMany(ctx, tx, table, schema, columns, rows)
	})
}

func (r *Repository) Replace(ctx context.Context, table string, columns []string, rows [][]any) error {
	schema, err := r.schema(table)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		q, args, err := psql.Delete(table).ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}

		return insertMany(ctx, tx, table, schema, columns, rows)
	})
}

// Update runs every cell update in one transaction and rolls back when any row is missing.
func (r *Repository) Update(ctx context.Context, table string, _ []string, updates []entity.CellUpdate) error {
	schema, err := r.schema(table)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var failed []store.FailedUpdate

		for i, u := range updates {
			if !slices.Contains(schema.Columns, u.Column) {
				failed = append(failed, store.FailedUpdate{Index: i, Ref: u.Ref, Column: u.Column, Reason: "unknown column"})
				continue
			}

			q, args, err := psql.Update(table).
				Set(u.Column, schema.value(u.Column, u.Value)).
				Where(sq.Eq{"id": u.Ref}).
				ToSql()
			if err != nil {
				return err
			}

			res, err := tx.Exec(ctx, q, args...)
			if err != nil {
				return fmt.Errorf("update %s.%s: %w", table, u.Column, err)
			}

			if res.RowsAffected() == 0 {
				failed = append(failed, store.FailedUpdate{Index: i, Ref: u.Ref, Column: u.Column, Reason: "row does not exist"})
			}
		}

		if len(failed) > 0 {
			return &store.UpdateError{Failed: failed}
		}

		return nil
	})
}

func insertMany(ctx context.Context, tx pgx.Tx, table string, schema Schema, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	cols, _ := schema.project(columns, nil)
	stmt := psql.Insert(table).Columns(cols...)

	for _, row := range rows {
		_, vals := schema.project(columns, row)
		stmt = stmt.Values(vals...)
	}

	q, args, err := stmt.ToSql()
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}

	return nil
}

func (r *Repository) schema(table string) (Schema, error) {
	s, ok := r.schemas[table]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	return s, nil
}

// project keeps the columns the table has, in input order, and converts their values.
func (s Schema) project(columns []string, row []any) ([]string, []any) {
	cols := make([]string, 0, len(columns))
	vals := make([]any, 0, len(columns))

	for i, c := range columns {
		if !slices.Contains(s.Columns, c) {
			continue
		}

		var v any = ""
		if i < len(row) {
			v = row[i]
		}

		cols = append(cols, c)
		vals = append(vals, s.value(c, v))
	}

	return cols, vals
}

func (s Schema) value(column string, v any) any {
	if !slices.Contains(s.Stamps, column) {
		if v == nil {
			return ""
		}

		return entity.Text(v)
	}

	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
	}

	return v
}
