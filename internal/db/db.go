package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Driver names registered by the imported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

func init() {
	// sqlx does not know the modernc driver name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Options tune the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// IsPostgres reports whether dsn points at a PostgreSQL server.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open opens a database connection. A postgres:// URL selects PostgreSQL;
// anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	driver, source := DriverSQLite, sqliteDSN(dsn)
	if IsPostgres(dsn) {
		driver, source = DriverPostgres, dsn
	}

	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}

// sqliteDSN builds a modernc DSN for path. Pragmas are set through the DSN so
// every pooled connection gets them, and write transactions start with
// BEGIN IMMEDIATE so concurrent ledger operations serialize instead of
// failing on lock upgrade.
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}
