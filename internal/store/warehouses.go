package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

// CreateWarehouse creates a new warehouse.
func CreateWarehouse(ctx context.Context, q sqlx.ExtContext, name, location string) (*model.Warehouse, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO warehouses (name, location) VALUES (?, ?)`, name, location)
	if err != nil {
		return nil, fmt.Errorf("creating warehouse: %w", err)
	}
	return GetWarehouse(ctx, q, id)
}

// GetWarehouse returns a warehouse by ID.
func GetWarehouse(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Warehouse, error) {
	w, err := getOne[model.Warehouse](ctx, q,
		`SELECT id, name, location FROM warehouses WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting warehouse: %w", err)
	}
	return w, nil
}

// ListWarehouses returns all warehouses.
func ListWarehouses(ctx context.Context, q sqlx.ExtContext) ([]model.Warehouse, error) {
	ws, err := selectAll[model.Warehouse](ctx, q,
		`SELECT id, name, location FROM warehouses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing warehouses: %w", err)
	}
	return ws, nil
}
