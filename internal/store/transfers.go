package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const transferColumns = `id, from_warehouse_id, to_warehouse_id, transfer_date, reference, notes`

// CreateTransfer inserts a transfer header.
func CreateTransfer(ctx context.Context, q sqlx.ExtContext, t model.InventoryTransfer) (*model.InventoryTransfer, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO inventory_transfers (from_warehouse_id, to_warehouse_id, transfer_date, reference, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		t.FromWarehouseID, t.ToWarehouseID, t.TransferDate.UTC(), t.Reference, t.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating transfer: %w", err)
	}
	t.ID = id
	t.Items = nil
	return &t, nil
}

// CreateTransferItem inserts one transfer line.
func CreateTransferItem(ctx context.Context, q sqlx.ExtContext, it model.TransferItem) (*model.TransferItem, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO transfer_items (transfer_id, inventory_id, quantity) VALUES (?, ?, ?)`,
		it.TransferID, it.InventoryID, it.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating transfer item: %w", err)
	}
	it.ID = id
	return &it, nil
}

// GetTransfer returns a transfer header with its lines.
func GetTransfer(ctx context.Context, q sqlx.ExtContext, id int64) (*model.InventoryTransfer, error) {
	t, err := getOne[model.InventoryTransfer](ctx, q,
		`SELECT `+transferColumns+` FROM inventory_transfers WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}
	if t == nil {
		return nil, nil
	}

	t.Items, err = ListTransferItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransferItems returns the lines of a transfer in insertion order.
func ListTransferItems(ctx context.Context, q sqlx.ExtContext, transferID int64) ([]model.TransferItem, error) {
	items, err := selectAll[model.TransferItem](ctx, q,
		`SELECT id, transfer_id, inventory_id, quantity FROM transfer_items
		 WHERE transfer_id = ? ORDER BY id`, transferID)
	if err != nil {
		return nil, fmt.Errorf("listing transfer items: %w", err)
	}
	return items, nil
}

// ListTransfers returns transfer headers, newest first. A positive limit
// caps the number of rows.
func ListTransfers(ctx context.Context, q sqlx.ExtContext, limit int) ([]model.InventoryTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM inventory_transfers ORDER BY transfer_date DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	ts, err := selectAll[model.InventoryTransfer](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	return ts, nil
}
