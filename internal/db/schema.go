package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

// sqliteSchema is the full SQLite database schema.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS warehouses (
    id       INTEGER PRIMARY KEY,
    name     TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS inventory (
    id           INTEGER PRIMARY KEY,
    product_id   TEXT NOT NULL UNIQUE,
    category     TEXT NOT NULL,
    item_name    TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    quantity     REAL NOT NULL,
    unit         TEXT NOT NULL,
    unit_price   REAL NOT NULL,
    min_stock    REAL,
    max_stock    REAL,
    warehouse_id INTEGER NOT NULL REFERENCES warehouses(id)
);

CREATE INDEX IF NOT EXISTS idx_inventory_warehouse_name
    ON inventory(warehouse_id, item_name);

CREATE TABLE IF NOT EXISTS inventory_transfers (
    id                INTEGER PRIMARY KEY,
    from_warehouse_id INTEGER NOT NULL REFERENCES warehouses(id),
    to_warehouse_id   INTEGER NOT NULL REFERENCES warehouses(id),
    transfer_date     DATETIME NOT NULL,
    reference         TEXT NOT NULL DEFAULT '',
    notes             TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS transfer_items (
    id           INTEGER PRIMARY KEY,
    transfer_id  INTEGER NOT NULL REFERENCES inventory_transfers(id),
    inventory_id INTEGER NOT NULL,
    quantity     REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
    id                INTEGER PRIMARY KEY,
    invoice_no        TEXT NOT NULL UNIQUE,
    sale_date         DATETIME NOT NULL,
    customer_name     TEXT NOT NULL,
    customer_contact  TEXT NOT NULL DEFAULT '',
    customer_location TEXT NOT NULL DEFAULT '',
    salesperson       TEXT NOT NULL DEFAULT '',
    subtotal          REAL NOT NULL,
    discount          REAL NOT NULL DEFAULT 0,
    vat               REAL NOT NULL DEFAULT 15,
    total_amount      REAL NOT NULL,
    payment_status    TEXT NOT NULL,
    payment_method    TEXT NOT NULL DEFAULT '',
    bank_name         TEXT NOT NULL DEFAULT '',
    account_no        TEXT NOT NULL DEFAULT '',
    delivery_required BOOLEAN NOT NULL DEFAULT 0,
    delivery_date     DATETIME,
    delivery_status   TEXT NOT NULL DEFAULT 'pending',
    warehouse_id      INTEGER REFERENCES warehouses(id)
);

CREATE TABLE IF NOT EXISTS sale_items (
    id           INTEGER PRIMARY KEY,
    sale_id      INTEGER NOT NULL REFERENCES sales(id),
    inventory_id INTEGER NOT NULL,
    quantity     REAL NOT NULL,
    unit_price   REAL NOT NULL,
    discount     REAL NOT NULL DEFAULT 0,
    total_price  REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS machinery (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    category      TEXT NOT NULL,
    model         TEXT NOT NULL DEFAULT '',
    brand         TEXT NOT NULL DEFAULT '',
    serial_no     TEXT NOT NULL DEFAULT '',
    purchase_date DATETIME,
    notes         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS machinery_service (
    id           INTEGER PRIMARY KEY,
    machinery_id INTEGER NOT NULL REFERENCES machinery(id) ON DELETE CASCADE,
    service_date DATETIME NOT NULL,
    service_type TEXT NOT NULL,
    cost         REAL,
    vendor       TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS purchases (
    id                 INTEGER PRIMARY KEY,
    invoice_no         TEXT NOT NULL UNIQUE,
    purchase_type      TEXT NOT NULL,
    purchase_date      DATETIME NOT NULL,
    seller_name        TEXT NOT NULL,
    seller_location    TEXT NOT NULL DEFAULT '',
    total_amount       REAL NOT NULL,
    transport_fees     REAL NOT NULL DEFAULT 0,
    handling_fees      REAL NOT NULL DEFAULT 0,
    commission_fees    REAL NOT NULL DEFAULT 0,
    item_pickup_status TEXT NOT NULL DEFAULT 'not',
    receipt_status     TEXT NOT NULL DEFAULT 'not',
    payment_status     TEXT NOT NULL DEFAULT 'not',
    purchase_status    TEXT NOT NULL DEFAULT 'incomplete'
);

CREATE TABLE IF NOT EXISTS purchase_items (
    id          INTEGER PRIMARY KEY,
    purchase_id INTEGER NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
    category    TEXT NOT NULL DEFAULT '',
    item_name   TEXT NOT NULL,
    model       TEXT NOT NULL DEFAULT '',
    brand       TEXT NOT NULL DEFAULT '',
    color       TEXT NOT NULL DEFAULT '',
    serial_no   TEXT NOT NULL DEFAULT '',
    quantity    REAL NOT NULL,
    unit        TEXT NOT NULL,
    unit_price  REAL NOT NULL,
    vat         REAL NOT NULL DEFAULT 15,
    total_price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    id            INTEGER PRIMARY KEY,
    document_type TEXT NOT NULL,
    related_id    INTEGER,
    related_type  TEXT NOT NULL DEFAULT '',
    file_name     TEXT NOT NULL,
    file_path     TEXT NOT NULL,
    upload_date   DATETIME NOT NULL,
    uploaded_by   INTEGER NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS projects (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    location   TEXT NOT NULL DEFAULT '',
    start_date DATETIME,
    end_date   DATETIME,
    status     TEXT NOT NULL DEFAULT 'pending'
);

CREATE TABLE IF NOT EXISTS tasks (
    id          INTEGER PRIMARY KEY,
    project_id  INTEGER NOT NULL REFERENCES projects(id),
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    assigned_to INTEGER REFERENCES users(id),
    due_date    DATETIME,
    status      TEXT NOT NULL DEFAULT 'pending',
    priority    TEXT NOT NULL DEFAULT 'normal'
);

CREATE TABLE IF NOT EXISTS item_usage (
    id           INTEGER PRIMARY KEY,
    inventory_id INTEGER NOT NULL,
    project_id   INTEGER REFERENCES projects(id),
    task_id      INTEGER REFERENCES tasks(id),
    quantity     REAL NOT NULL,
    usage_date   DATETIME NOT NULL,
    recorded_by  INTEGER NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS timesheet (
    id          INTEGER PRIMARY KEY,
    user_id     INTEGER NOT NULL REFERENCES users(id),
    project_id  INTEGER REFERENCES projects(id),
    task_id     INTEGER REFERENCES tasks(id),
    work_date   DATETIME NOT NULL,
    hours       REAL NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);
`

// postgresSchema mirrors sqliteSchema with PostgreSQL types. Money columns
// are NUMERIC so decimal values round-trip exactly.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    deleted_at    TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS warehouses (
    id       BIGSERIAL PRIMARY KEY,
    name     TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS inventory (
    id           BIGSERIAL PRIMARY KEY,
    product_id   TEXT NOT NULL UNIQUE,
    category     TEXT NOT NULL,
    item_name    TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    quantity     DOUBLE PRECISION NOT NULL,
    unit         TEXT NOT NULL,
    unit_price   NUMERIC(14, 2) NOT NULL,
    min_stock    DOUBLE PRECISION,
    max_stock    DOUBLE PRECISION,
    warehouse_id BIGINT NOT NULL REFERENCES warehouses(id)
);

CREATE INDEX IF NOT EXISTS idx_inventory_warehouse_name
    ON inventory(warehouse_id, item_name);

CREATE TABLE IF NOT EXISTS inventory_transfers (
    id                BIGSERIAL PRIMARY KEY,
    from_warehouse_id BIGINT NOT NULL REFERENCES warehouses(id),
    to_warehouse_id   BIGINT NOT NULL REFERENCES warehouses(id),
    transfer_date     TIMESTAMPTZ NOT NULL,
    reference         TEXT NOT NULL DEFAULT '',
    notes             TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS transfer_items (
    id           BIGSERIAL PRIMARY KEY,
    transfer_id  BIGINT NOT NULL REFERENCES inventory_transfers(id),
    inventory_id BIGINT NOT NULL,
    quantity     DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
    id                BIGSERIAL PRIMARY KEY,
    invoice_no        TEXT NOT NULL UNIQUE,
    sale_date         TIMESTAMPTZ NOT NULL,
    customer_name     TEXT NOT NULL,
    customer_contact  TEXT NOT NULL DEFAULT '',
    customer_location TEXT NOT NULL DEFAULT '',
    salesperson       TEXT NOT NULL DEFAULT '',
    subtotal          NUMERIC(14, 2) NOT NULL,
    discount          NUMERIC(14, 2) NOT NULL DEFAULT 0,
    vat               NUMERIC(5, 2) NOT NULL DEFAULT 15,
    total_amount      NUMERIC(14, 2) NOT NULL,
    payment_status    TEXT NOT NULL,
    payment_method    TEXT NOT NULL DEFAULT '',
    bank_name         TEXT NOT NULL DEFAULT '',
    account_no        TEXT NOT NULL DEFAULT '',
    delivery_required BOOLEAN NOT NULL DEFAULT false,
    delivery_date     TIMESTAMPTZ,
    delivery_status   TEXT NOT NULL DEFAULT 'pending',
    warehouse_id      BIGINT REFERENCES warehouses(id)
);

CREATE TABLE IF NOT EXISTS sale_items (
    id           BIGSERIAL PRIMARY KEY,
    sale_id      BIGINT NOT NULL REFERENCES sales(id),
    inventory_id BIGINT NOT NULL,
    quantity     DOUBLE PRECISION NOT NULL,
    unit_price   NUMERIC(14, 2) NOT NULL,
    discount     NUMERIC(5, 2) NOT NULL DEFAULT 0,
    total_price  NUMERIC(14, 2) NOT NULL
);

CREATE TABLE IF NOT EXISTS machinery (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    category      TEXT NOT NULL,
    model         TEXT NOT NULL DEFAULT '',
    brand         TEXT NOT NULL DEFAULT '',
    serial_no     TEXT NOT NULL DEFAULT '',
    purchase_date TIMESTAMPTZ,
    notes         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS machinery_service (
    id           BIGSERIAL PRIMARY KEY,
    machinery_id BIGINT NOT NULL REFERENCES machinery(id) ON DELETE CASCADE,
    service_date TIMESTAMPTZ NOT NULL,
    service_type TEXT NOT NULL,
    cost         NUMERIC(14, 2),
    vendor       TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS purchases (
    id                 BIGSERIAL PRIMARY KEY,
    invoice_no         TEXT NOT NULL UNIQUE,
    purchase_type      TEXT NOT NULL,
    purchase_date      TIMESTAMPTZ NOT NULL,
    seller_name        TEXT NOT NULL,
    seller_location    TEXT NOT NULL DEFAULT '',
    total_amount       NUMERIC(14, 2) NOT NULL,
    transport_fees     NUMERIC(14, 2) NOT NULL DEFAULT 0,
    handling_fees      NUMERIC(14, 2) NOT NULL DEFAULT 0,
    commission_fees    NUMERIC(14, 2) NOT NULL DEFAULT 0,
    item_pickup_status TEXT NOT NULL DEFAULT 'not',
    receipt_status     TEXT NOT NULL DEFAULT 'not',
    payment_status     TEXT NOT NULL DEFAULT 'not',
    purchase_status    TEXT NOT NULL DEFAULT 'incomplete'
);

CREATE TABLE IF NOT EXISTS purchase_items (
    id          BIGSERIAL PRIMARY KEY,
    purchase_id BIGINT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
    category    TEXT NOT NULL DEFAULT '',
    item_name   TEXT NOT NULL,
    model       TEXT NOT NULL DEFAULT '',
    brand       TEXT NOT NULL DEFAULT '',
    color       TEXT NOT NULL DEFAULT '',
    serial_no   TEXT NOT NULL DEFAULT '',
    quantity    DOUBLE PRECISION NOT NULL,
    unit        TEXT NOT NULL,
    unit_price  NUMERIC(14, 2) NOT NULL,
    vat         NUMERIC(5, 2) NOT NULL DEFAULT 15,
    total_price NUMERIC(14, 2) NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    id            BIGSERIAL PRIMARY KEY,
    document_type TEXT NOT NULL,
    related_id    BIGINT,
    related_type  TEXT NOT NULL DEFAULT '',
    file_name     TEXT NOT NULL,
    file_path     TEXT NOT NULL,
    upload_date   TIMESTAMPTZ NOT NULL,
    uploaded_by   BIGINT NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS projects (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    location   TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMPTZ,
    end_date   TIMESTAMPTZ,
    status     TEXT NOT NULL DEFAULT 'pending'
);

CREATE TABLE IF NOT EXISTS tasks (
    id          BIGSERIAL PRIMARY KEY,
    project_id  BIGINT NOT NULL REFERENCES projects(id),
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    assigned_to BIGINT REFERENCES users(id),
    due_date    TIMESTAMPTZ,
    status      TEXT NOT NULL DEFAULT 'pending',
    priority    TEXT NOT NULL DEFAULT 'normal'
);

CREATE TABLE IF NOT EXISTS item_usage (
    id           BIGSERIAL PRIMARY KEY,
    inventory_id BIGINT NOT NULL,
    project_id   BIGINT REFERENCES projects(id),
    task_id      BIGINT REFERENCES tasks(id),
    quantity     DOUBLE PRECISION NOT NULL,
    usage_date   TIMESTAMPTZ NOT NULL,
    recorded_by  BIGINT NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS timesheet (
    id          BIGSERIAL PRIMARY KEY,
    user_id     BIGINT NOT NULL REFERENCES users(id),
    project_id  BIGINT REFERENCES projects(id),
    task_id     BIGINT REFERENCES tasks(id),
    work_date   TIMESTAMPTZ NOT NULL,
    hours       DOUBLE PRECISION NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SeedWarehouses inserts the default warehouses into an empty warehouses table.
func SeedWarehouses(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM warehouses`); err != nil {
		return fmt.Errorf("counting warehouses: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, w := range model.DefaultWarehouses {
		_, err := db.ExecContext(ctx,
			db.Rebind(`INSERT INTO warehouses (name, location) VALUES (?, ?)`),
			w.Name, w.Location,
		)
		if err != nil {
			return fmt.Errorf("seeding warehouse %q: %w", w.Name, err)
		}
	}
	return nil
}
