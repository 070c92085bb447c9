// Package store is the persistence gateway. Every function takes an
// sqlx.ExtContext so it runs the same way on a *sqlx.DB or inside a *sqlx.Tx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/opsledger/internal/db"
)

// ErrNotFound is returned by updates and deletes that matched no row.
var ErrNotFound = errors.New("not found")

// IsUniqueViolation reports whether err is a unique constraint failure on
// either dialect.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// forUpdate returns the row-locking suffix for locked reads. SQLite has no
// row locks; its write transactions already hold the database lock.
func forUpdate(q sqlx.ExtContext) string {
	if q.DriverName() == db.DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// insertID runs an INSERT and returns the generated id.
func insertID(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, q, &id, q.Rebind(query+" RETURNING id"), args...); err != nil {
		return 0, err
	}
	return id, nil
}

// getOne scans a single row into a new T. A missing row yields (nil, nil).
func getOne[T any](ctx context.Context, q sqlx.ExtContext, query string, args ...any) (*T, error) {
	v := new(T)
	err := sqlx.GetContext(ctx, q, v, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// selectAll scans every row into a slice. An empty result is a non-nil
// empty slice so it encodes as [] rather than null.
func selectAll[T any](ctx context.Context, q sqlx.ExtContext, query string, args ...any) ([]T, error) {
	out := []T{}
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// execAffected runs a statement and returns ErrNotFound when no row changed.
func execAffected(ctx context.Context, q sqlx.ExtContext, query string, args ...any) error {
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
