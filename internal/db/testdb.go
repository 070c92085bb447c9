package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

// NewTestDB creates a fresh file-backed SQLite database in a temporary
// directory with the schema applied and default warehouses seeded.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.sqlite3")

	db, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}
	if err := SeedWarehouses(ctx, db); err != nil {
		db.Close()
		t.Fatalf("seeding test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
