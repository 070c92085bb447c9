package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// InventoryItem is the stock of one named item held in one warehouse.
// The same logical item stocked in two warehouses is two rows.
type InventoryItem struct {
	ID          int64           `json:"id" db:"id"`
	ProductID   string          `json:"productId" db:"product_id"`
	Category    string          `json:"category" db:"category"`
	ItemName    string          `json:"itemName" db:"item_name"`
	Description string          `json:"description,omitempty" db:"description"`
	Quantity    float64         `json:"quantity" db:"quantity"`
	Unit        string          `json:"unit" db:"unit"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	MinStock    *float64        `json:"minStock" db:"min_stock"`
	MaxStock    *float64        `json:"maxStock" db:"max_stock"`
	WarehouseID int64           `json:"warehouseId" db:"warehouse_id"`

	// LowStock is derived on every read and never persisted.
	LowStock bool `json:"lowStock" db:"-"`
}

// IsLowStock reports whether the item is at or below its minimum threshold.
// Items without a threshold are never low.
func IsLowStock(item InventoryItem) bool {
	return item.MinStock != nil && item.Quantity <= *item.MinStock
}

// WithLowStock returns the item with its LowStock flag recomputed.
func (i InventoryItem) WithLowStock() InventoryItem {
	i.LowStock = IsLowStock(i)
	return i
}

// OptionalFloat is a patch field that tells an absent key from an explicit
// null. Set is true whenever the key was present.
type OptionalFloat struct {
	Set   bool
	Value *float64
}

// NewOptionalFloat returns a present field holding v, or null when v is nil.
func NewOptionalFloat(v *float64) OptionalFloat {
	return OptionalFloat{Set: true, Value: v}
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// InventoryPatch is a partial update of an inventory item. Nil fields are
// left unchanged. MinStock and MaxStock are cleared by an explicit null.
type InventoryPatch struct {
	ProductID   *string          `json:"productId"`
	Category    *string          `json:"category"`
	ItemName    *string          `json:"itemName"`
	Description *string          `json:"description"`
	Quantity    *float64         `json:"quantity"`
	Unit        *string          `json:"unit"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	MinStock    OptionalFloat    `json:"minStock"`
	MaxStock    OptionalFloat    `json:"maxStock"`
	WarehouseID *int64           `json:"warehouseId"`
}

// Apply merges the patch into item.
func (p InventoryPatch) Apply(item InventoryItem) InventoryItem {
	if p.ProductID != nil {
		item.ProductID = *p.ProductID
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.ItemName != nil {
		item.ItemName = *p.ItemName
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	if p.MinStock.Set {
		item.MinStock = p.MinStock.Value
	}
	if p.MaxStock.Set {
		item.MaxStock = p.MaxStock.Value
	}
	if p.WarehouseID != nil {
		item.WarehouseID = *p.WarehouseID
	}
	return item
}
