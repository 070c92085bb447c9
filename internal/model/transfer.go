package model

import "time"

// InventoryTransfer is the header of a stock movement between two warehouses.
type InventoryTransfer struct {
	ID              int64     `json:"id" db:"id"`
	FromWarehouseID int64     `json:"fromWarehouseId" db:"from_warehouse_id"`
	ToWarehouseID   int64     `json:"toWarehouseId" db:"to_warehouse_id"`
	TransferDate    time.Time `json:"transferDate" db:"transfer_date"`
	Reference       string    `json:"reference,omitempty" db:"reference"`
	Notes           string    `json:"notes,omitempty" db:"notes"`

	Items []TransferItem `json:"items,omitempty" db:"-"`
}

// TransferItem is one line of a transfer. InventoryID always refers to the
// source row, even after the destination row was created or topped up.
type TransferItem struct {
	ID          int64   `json:"id" db:"id"`
	TransferID  int64   `json:"transferId" db:"transfer_id"`
	InventoryID int64   `json:"inventoryId" db:"inventory_id"`
	Quantity    float64 `json:"quantity" db:"quantity"`
}
