package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxPool is the subset of *pgxpool.Pool the repositories rely on.
type pgxPool interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXStore implements Store on PostgreSQL through pgx.
type PGXStore struct {
	pool pgxPool
}

var _ Store = (*PGXStore)(nil)

// NewPGXStore wires a pgx backed store.
func NewPGXStore(pool *pgxpool.Pool) *PGXStore {
	return &PGXStore{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
		(pgErr.ConstraintName == constraint || strings.Contains(pgErr.Message, constraint))
}

// updateBuilder accumulates SET clauses for partial updates.
type updateBuilder struct {
	sets  []string
	args  []any
	conds []string
}

// set binds value to column and returns its placeholder.
func (b *updateBuilder) set(column string, value any) string {
	b.args = append(b.args, value)
	placeholder := fmt.Sprintf("$%d", len(b.args))
	b.sets = append(b.sets, column+" = "+placeholder)
	return placeholder
}

// expr appends a raw SET clause that may reference earlier placeholders.
func (b *updateBuilder) expr(clause string) {
	b.sets = append(b.sets, clause)
}

// where narrows the update beyond the id match.
func (b *updateBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

// query renders the UPDATE with updated_at always advanced past its stored value.
func (b *updateBuilder) query(table, id, returning string) (string, []any) {
	sets := append(append([]string{}, b.sets...), "updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')")
	args := append(append([]any{}, b.args...), id)
	where := append([]string{fmt.Sprintf("id = $%d", len(args))}, b.conds...)
	return fmt.Sprintf(`UPDATE %s SET %s WHERE %s RETURNING %s`, table, strings.Join(sets, ", "), strings.Join(where, " AND "), returning), args
}

func setIf[T any](b *updateBuilder, column string, v *T) {
	if v != nil {
		b.set(column, *v)
	}
}

func scanErr(err error, kind, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(kind, id)
	}
	return fmt.Errorf("query %s: %w", kind, err)
}

// collect drains rows with scan, closing them.
func collect[T any](rows pgx.Rows, kind string, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", kind, err)
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}
