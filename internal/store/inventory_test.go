package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/opsledger/internal/db"
	"github.com/erazemk/opsledger/internal/model"
)

func newItem(productID, name string, qty float64, warehouseID int64) model.InventoryItem {
	return model.InventoryItem{
		ProductID:   productID,
		Category:    "Hardware",
		ItemName:    name,
		Quantity:    qty,
		Unit:        "pcs",
		UnitPrice:   decimal.RequireFromString("0.25"),
		WarehouseID: warehouseID,
	}
}

func TestCreateAndGetInventoryItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	in := newItem("ITM-0001", "Bolt", 100, 1)
	minStock := 10.0
	in.MinStock = &minStock

	item, err := CreateInventoryItem(ctx, database, in)
	if err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected generated id")
	}
	if item.Quantity != 100 || item.ItemName != "Bolt" {
		t.Errorf("unexpected item: %+v", item)
	}
	if !item.UnitPrice.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("expected unit price 0.25, got %s", item.UnitPrice)
	}
	if item.MinStock == nil || *item.MinStock != 10 {
		t.Errorf("expected min stock 10, got %v", item.MinStock)
	}
	if item.MaxStock != nil {
		t.Errorf("expected nil max stock, got %v", *item.MaxStock)
	}
	if item.LowStock {
		t.Error("expected item not to be low on stock")
	}

	missing, err := GetInventoryItem(ctx, database, 9999)
	if err != nil {
		t.Fatalf("GetInventoryItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestDuplicateProductIDRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateInventoryItem(ctx, database, newItem("ITM-0001", "Bolt", 1, 1)); err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}
	if _, err := CreateInventoryItem(ctx, database, newItem("ITM-0001", "Nut", 1, 2)); err == nil {
		t.Error("expected unique product id violation")
	}
}

func TestListInventoryFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	low := newItem("ITM-0001", "Bolt", 3, 1)
	minStock := 5.0
	low.MinStock = &minStock
	CreateInventoryItem(ctx, database, low)
	CreateInventoryItem(ctx, database, newItem("ITM-0002", "Nut", 0, 1))
	CreateInventoryItem(ctx, database, newItem("ITM-0003", "Washer", 50, 2))

	tests := []struct {
		name     string
		filter   InventoryFilter
		expected int
	}{
		{"all", InventoryFilter{}, 3},
		{"warehouse 1", InventoryFilter{WarehouseID: 1}, 2},
		{"warehouse 2", InventoryFilter{WarehouseID: 2}, 1},
		{"low stock", InventoryFilter{LowStock: true}, 1},
		{"low stock in warehouse 2", InventoryFilter{WarehouseID: 2, LowStock: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ListInventory(ctx, database, tt.filter)
			if err != nil {
				t.Fatalf("ListInventory: %v", err)
			}
			if len(items) != tt.expected {
				t.Errorf("expected %d items, got %d", tt.expected, len(items))
			}
		})
	}

	items, _ := ListInventory(ctx, database, InventoryFilter{LowStock: true})
	if len(items) == 1 && !items[0].LowStock {
		t.Error("expected low stock flag to be derived on read")
	}

	n, err := CountLowStock(ctx, database)
	if err != nil {
		t.Fatalf("CountLowStock: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 low stock item, got %d", n)
	}
}

func TestAdjustInventoryQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateInventoryItem(ctx, database, newItem("ITM-0001", "Bolt", 10, 1))

	if err := AdjustInventoryQuantity(ctx, database, item.ID, -4); err != nil {
		t.Fatalf("AdjustInventoryQuantity: %v", err)
	}
	if err := AdjustInventoryQuantity(ctx, database, item.ID, -10); err != nil {
		t.Fatalf("AdjustInventoryQuantity: %v", err)
	}

	got, _ := GetInventoryItem(ctx, database, item.ID)
	if got.Quantity != -4 {
		t.Errorf("expected unclamped quantity -4, got %v", got.Quantity)
	}

	err := AdjustInventoryQuantity(ctx, database, 9999, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindInventoryByName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateInventoryItem(ctx, database, newItem("ITM-0001", "Bolt", 10, 1))
	b, _ := CreateInventoryItem(ctx, database, newItem("ITM-0001-2", "Bolt", 5, 2))

	got, err := FindInventoryByName(ctx, database, "Bolt", 2)
	if err != nil {
		t.Fatalf("FindInventoryByName: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Fatalf("expected row %d, got %+v", b.ID, got)
	}

	// Matching is exact.
	got, _ = FindInventoryByName(ctx, database, "bolt", 2)
	if got != nil {
		t.Errorf("expected no match for different case, got %+v", got)
	}
}

func TestUpdateAndDeleteInventoryItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateInventoryItem(ctx, database, newItem("ITM-0001", "Bolt", 10, 1))
	item.Description = "M8 hex bolt"
	item.Quantity = 12

	updated, err := UpdateInventoryItem(ctx, database, *item)
	if err != nil {
		t.Fatalf("UpdateInventoryItem: %v", err)
	}
	if updated.Description != "M8 hex bolt" || updated.Quantity != 12 {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if err := DeleteInventoryItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteInventoryItem: %v", err)
	}
	if err := DeleteInventoryItem(ctx, database, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	missing := *item
	missing.ID = 9999
	if _, err := UpdateInventoryItem(ctx, database, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProductIDExists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateInventoryItem(ctx, database, newItem("ITM-0001", "Bolt", 1, 1))

	taken, err := ProductIDExists(ctx, database, "ITM-0001", 0)
	if err != nil {
		t.Fatalf("ProductIDExists: %v", err)
	}
	if !taken {
		t.Error("expected product id to be taken")
	}

	self, _ := ProductIDExists(ctx, database, "ITM-0001", item.ID)
	if self {
		t.Error("expected own row to be excluded")
	}
}

func TestDuplicateProductIDIsUniqueViolation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateInventoryItem(ctx, database, newItem("ITM-0001", "Bolt", 1, 1)); err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}

	_, err := CreateInventoryItem(ctx, database, newItem("ITM-0001", "Nut", 1, 1))
	if err == nil {
		t.Fatal("expected duplicate product id to fail")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
	if IsUniqueViolation(ErrNotFound) {
		t.Error("ErrNotFound is not a unique violation")
	}
}
