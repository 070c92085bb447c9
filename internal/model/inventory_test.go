package model

import (
	"encoding/json"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestIsLowStock(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		minStock *float64
		expected bool
	}{
		{"no threshold, empty", 0, nil, false},
		{"no threshold, negative", -5, nil, false},
		{"below threshold", 3, ptr(5.0), true},
		{"at threshold", 5, ptr(5.0), true},
		{"above threshold", 5.5, ptr(5.0), false},
		{"zero threshold, zero stock", 0, ptr(0.0), true},
		{"negative stock", -1, ptr(0.0), true},
	}

	for _, tt := range tests {
		item := InventoryItem{Quantity: tt.quantity, MinStock: tt.minStock}
		if got := IsLowStock(item); got != tt.expected {
			t.Errorf("%s: IsLowStock = %v, want %v", tt.name, got, tt.expected)
		}
		if got := item.WithLowStock().LowStock; got != tt.expected {
			t.Errorf("%s: WithLowStock().LowStock = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestInventoryPatchApply(t *testing.T) {
	item := InventoryItem{ID: 1, ItemName: "Bolt", Quantity: 10, Unit: "pcs", WarehouseID: 1}

	got := InventoryPatch{Quantity: ptr(4.0), MinStock: NewOptionalFloat(ptr(5.0))}.Apply(item)
	if got.Quantity != 4 {
		t.Errorf("expected quantity 4, got %v", got.Quantity)
	}
	if got.MinStock == nil || *got.MinStock != 5 {
		t.Errorf("expected min stock 5, got %v", got.MinStock)
	}
	if got.ItemName != "Bolt" || got.Unit != "pcs" || got.WarehouseID != 1 {
		t.Errorf("unpatched fields changed: %+v", got)
	}
}

func TestInventoryPatchThresholds(t *testing.T) {
	item := InventoryItem{Quantity: 3, MinStock: ptr(5.0), MaxStock: ptr(50.0)}

	tests := []struct {
		name    string
		body    string
		wantMin *float64
		wantMax *float64
	}{
		{"absent keys keep thresholds", `{"description":"x"}`, ptr(5.0), ptr(50.0)},
		{"null clears min stock", `{"minStock":null}`, nil, ptr(50.0)},
		{"null clears both", `{"minStock":null,"maxStock":null}`, nil, nil},
		{"value replaces", `{"minStock":2}`, ptr(2.0), ptr(50.0)},
	}

	for _, tt := range tests {
		var patch InventoryPatch
		if err := json.Unmarshal([]byte(tt.body), &patch); err != nil {
			t.Fatalf("%s: unmarshal: %v", tt.name, err)
		}
		got := patch.Apply(item)
		if !equalFloatPtr(got.MinStock, tt.wantMin) {
			t.Errorf("%s: min stock = %v, want %v", tt.name, got.MinStock, tt.wantMin)
		}
		if !equalFloatPtr(got.MaxStock, tt.wantMax) {
			t.Errorf("%s: max stock = %v, want %v", tt.name, got.MaxStock, tt.wantMax)
		}
	}

	var patch InventoryPatch
	json.Unmarshal([]byte(`{"minStock":null}`), &patch)
	if patch.Apply(item).WithLowStock().LowStock {
		t.Error("item with cleared threshold must not be low")
	}
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
