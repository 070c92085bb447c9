package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSaleLineTotal(t *testing.T) {
	tests := []struct {
		quantity  float64
		unitPrice string
		discount  string
		expected  string
	}{
		{2, "10", "0", "20"},
		{3, "9.99", "0", "29.97"},
		{4, "25", "10", "90"},
		{1, "100", "100", "0"},
		{0.5, "3", "0", "1.5"},
	}

	for _, tt := range tests {
		got := SaleLineTotal(tt.quantity, decimal.RequireFromString(tt.unitPrice), decimal.RequireFromString(tt.discount))
		if !got.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("SaleLineTotal(%v, %s, %s) = %s, want %s", tt.quantity, tt.unitPrice, tt.discount, got, tt.expected)
		}
	}
}

func TestSaleApplyTotals(t *testing.T) {
	s := Sale{
		Discount: decimal.NewFromInt(10),
		VAT:      decimal.NewFromInt(15),
		Items: []SaleItem{
			{Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
			{Quantity: 1, UnitPrice: decimal.NewFromInt(100), Discount: decimal.NewFromInt(50)},
		},
	}
	s.ApplyTotals()

	if !s.Items[0].TotalPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected line 0 total 100, got %s", s.Items[0].TotalPrice)
	}
	if !s.Items[1].TotalPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected line 1 total 50, got %s", s.Items[1].TotalPrice)
	}
	if !s.Subtotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected subtotal 150, got %s", s.Subtotal)
	}
	// 150 - 10 + 22.5
	if !s.TotalAmount.Equal(decimal.RequireFromString("162.5")) {
		t.Errorf("expected total 162.5, got %s", s.TotalAmount)
	}
}
