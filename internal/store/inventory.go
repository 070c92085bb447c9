package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const inventoryColumns = `id, product_id, category, item_name, description, quantity,
	unit, unit_price, min_stock, max_stock, warehouse_id`

// InventoryFilter narrows ListInventory. Zero values mean no filter.
type InventoryFilter struct {
	WarehouseID int64
	LowStock    bool
}

// CreateInventoryItem inserts a new inventory row.
func CreateInventoryItem(ctx context.Context, q sqlx.ExtContext, item model.InventoryItem) (*model.InventoryItem, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO inventory (product_id, category, item_name, description, quantity,
		     unit, unit_price, min_stock, max_stock, warehouse_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ProductID, item.Category, item.ItemName, item.Description, item.Quantity,
		item.Unit, item.UnitPrice, item.MinStock, item.MaxStock, item.WarehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}
	return GetInventoryItem(ctx, q, id)
}

// GetInventoryItem returns an inventory row by ID.
func GetInventoryItem(ctx context.Context, q sqlx.ExtContext, id int64) (*model.InventoryItem, error) {
	return getInventoryItem(ctx, q, id, "")
}

// LockInventoryItem is GetInventoryItem with the row locked until the
// surrounding transaction ends.
func LockInventoryItem(ctx context.Context, q sqlx.ExtContext, id int64) (*model.InventoryItem, error) {
	return getInventoryItem(ctx, q, id, forUpdate(q))
}

func getInventoryItem(ctx context.Context, q sqlx.ExtContext, id int64, suffix string) (*model.InventoryItem, error) {
	item, err := getOne[model.InventoryItem](ctx, q,
		`SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`+suffix, id)
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	if item != nil {
		*item = item.WithLowStock()
	}
	return item, nil
}

// FindInventoryByName returns the row in warehouseID whose item name equals
// name exactly, locked for update. When several rows match, the oldest wins.
func FindInventoryByName(ctx context.Context, q sqlx.ExtContext, name string, warehouseID int64) (*model.InventoryItem, error) {
	item, err := getOne[model.InventoryItem](ctx, q,
		`SELECT `+inventoryColumns+` FROM inventory
		 WHERE item_name = ? AND warehouse_id = ?
		 ORDER BY id LIMIT 1`+forUpdate(q), name, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("finding inventory item by name: %w", err)
	}
	if item != nil {
		*item = item.WithLowStock()
	}
	return item, nil
}

// ListInventory returns inventory rows, optionally scoped to a warehouse or
// to items at or below their minimum stock.
func ListInventory(ctx context.Context, q sqlx.ExtContext, f InventoryFilter) ([]model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE 1 = 1`
	var args []any
	if f.WarehouseID != 0 {
		query += ` AND warehouse_id = ?`
		args = append(args, f.WarehouseID)
	}
	if f.LowStock {
		query += ` AND min_stock IS NOT NULL AND quantity <= min_stock`
	}
	query += ` ORDER BY warehouse_id, item_name, id`

	items, err := selectAll[model.InventoryItem](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	for i := range items {
		items[i] = items[i].WithLowStock()
	}
	return items, nil
}

// UpdateInventoryItem overwrites every editable column of an existing row.
func UpdateInventoryItem(ctx context.Context, q sqlx.ExtContext, item model.InventoryItem) (*model.InventoryItem, error) {
	err := execAffected(ctx, q,
		`UPDATE inventory SET product_id = ?, category = ?, item_name = ?, description = ?,
		     quantity = ?, unit = ?, unit_price = ?, min_stock = ?, max_stock = ?, warehouse_id = ?
		 WHERE id = ?`,
		item.ProductID, item.Category, item.ItemName, item.Description,
		item.Quantity, item.Unit, item.UnitPrice, item.MinStock, item.MaxStock, item.WarehouseID,
		item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating inventory item: %w", err)
	}
	return GetInventoryItem(ctx, q, item.ID)
}

// AdjustInventoryQuantity adds delta to a row's quantity in one statement.
// The result is not clamped. ErrNotFound is returned for a missing row.
func AdjustInventoryQuantity(ctx context.Context, q sqlx.ExtContext, id int64, delta float64) error {
	err := execAffected(ctx, q,
		`UPDATE inventory SET quantity = quantity + ? WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("adjusting inventory quantity: %w", err)
	}
	return nil
}

// DeleteInventoryItem removes an inventory row.
func DeleteInventoryItem(ctx context.Context, q sqlx.ExtContext, id int64) error {
	if err := execAffected(ctx, q, `DELETE FROM inventory WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting inventory item: %w", err)
	}
	return nil
}

// CountLowStock returns how many rows are at or below their minimum stock.
func CountLowStock(ctx context.Context, q sqlx.ExtContext) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		`SELECT COUNT(*) FROM inventory WHERE min_stock IS NOT NULL AND quantity <= min_stock`)
	if err != nil {
		return 0, fmt.Errorf("counting low stock items: %w", err)
	}
	return n, nil
}
