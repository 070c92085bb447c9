package db

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		dsn      string
		expected bool
	}{
		{"postgres://u:p@localhost:5432/ops", true},
		{"postgresql://localhost/ops", true},
		{"opsledger.sqlite3", false},
		{"/var/lib/ops/postgres.sqlite3", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPostgres(tt.dsn); got != tt.expected {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.dsn, got, tt.expected)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("data/ops.sqlite3")
	if !strings.HasPrefix(dsn, "file:data/ops.sqlite3?") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}

	q, err := url.ParseQuery(strings.SplitN(dsn, "?", 2)[1])
	if err != nil {
		t.Fatalf("parsing dsn query: %v", err)
	}
	if q.Get("_txlock") != "immediate" {
		t.Errorf("expected immediate transactions, got %q", q.Get("_txlock"))
	}
	if len(q["_pragma"]) != 4 {
		t.Errorf("expected 4 pragmas, got %v", q["_pragma"])
	}
}

func TestSchemaAndSeedIdempotent(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	if err := EnsureSchema(ctx, database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
	if err := SeedWarehouses(ctx, database); err != nil {
		t.Fatalf("second SeedWarehouses: %v", err)
	}

	var count int
	if err := database.GetContext(ctx, &count, `SELECT COUNT(*) FROM warehouses`); err != nil {
		t.Fatalf("counting warehouses: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 seeded warehouses, got %d", count)
	}
}
