package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

func TestRecordUsageDeducts(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 10, whA)
	user, _ := store.CreateUser(ctx, database, "worker", "hash", model.RoleUser)

	res, err := l.RecordUsage(ctx, model.ItemUsage{
		InventoryID: bolt.ID,
		Quantity:    4,
		RecordedBy:  user.ID,
	})
	if err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if res.Skipped {
		t.Error("expected usage not to be skipped")
	}
	if got := quantity(t, l, bolt.ID); got != 6 {
		t.Errorf("expected 6, got %v", got)
	}

	usage, _ := store.ListItemUsage(ctx, database, store.UsageFilter{InventoryID: bolt.ID})
	if len(usage) != 1 || usage[0].ID != res.Usage.ID || usage[0].Quantity != 4 {
		t.Errorf("expected persisted usage row, got %+v", usage)
	}
}

func TestRecordUsageAllowsNegative(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 2, whA)
	user, _ := store.CreateUser(ctx, database, "worker", "hash", model.RoleUser)

	if _, err := l.RecordUsage(ctx, model.ItemUsage{InventoryID: bolt.ID, Quantity: 5, RecordedBy: user.ID}); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if got := quantity(t, l, bolt.ID); got != -3 {
		t.Errorf("expected -3, got %v", got)
	}
}

func TestRecordUsageMissingItem(t *testing.T) {
	ctx := context.Background()

	t.Run("fail", func(t *testing.T) {
		l, database := newTestLedger(t)
		user, _ := store.CreateUser(ctx, database, "worker", "hash", model.RoleUser)

		_, err := l.RecordUsage(ctx, model.ItemUsage{InventoryID: 9999, Quantity: 1, RecordedBy: user.ID})
		if !errors.Is(err, ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
		usage, _ := store.ListItemUsage(ctx, database, store.UsageFilter{})
		if len(usage) != 0 {
			t.Errorf("expected usage row rolled back, got %d", len(usage))
		}
	})

	t.Run("skip", func(t *testing.T) {
		l, database := newTestLedger(t, WithMissingPolicy(MissingSkip))
		user, _ := store.CreateUser(ctx, database, "worker", "hash", model.RoleUser)

		res, err := l.RecordUsage(ctx, model.ItemUsage{InventoryID: 9999, Quantity: 1, RecordedBy: user.ID})
		if err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
		if !res.Skipped {
			t.Error("expected usage to be reported as skipped")
		}
		usage, _ := store.ListItemUsage(ctx, database, store.UsageFilter{})
		if len(usage) != 1 {
			t.Errorf("expected usage row kept, got %d", len(usage))
		}
	})
}

func newSale(lines ...model.SaleItem) model.Sale {
	return model.Sale{
		InvoiceNo:     "INV-0001",
		CustomerName:  "Acme",
		VAT:           model.DefaultVAT,
		Discount:      decimal.NewFromInt(10),
		PaymentStatus: model.PaymentPaid,
		Items:         lines,
	}
}

func TestRecordSaleDeductsAndTotals(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)
	nut := addItem(t, database, "ITM-0002", "Nut", 3, whA)

	res, err := l.RecordSale(ctx, newSale(
		model.SaleItem{InventoryID: bolt.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(10)},
		model.SaleItem{InventoryID: nut.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(10), Discount: decimal.NewFromInt(0)},
		model.SaleItem{InventoryID: bolt.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10), Discount: decimal.NewFromInt(100)},
	))
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	if got := quantity(t, l, bolt.ID); got != 89 {
		t.Errorf("expected Bolt 89, got %v", got)
	}
	if got := quantity(t, l, nut.ID); got != -2 {
		t.Errorf("expected Nut -2, got %v", got)
	}

	// subtotal 150, total 150 - 10 + 22.5
	sale := res.Sale
	if !sale.Subtotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected subtotal 150, got %s", sale.Subtotal)
	}
	if !sale.TotalAmount.Equal(decimal.RequireFromString("162.5")) {
		t.Errorf("expected total 162.5, got %s", sale.TotalAmount)
	}
	if sale.DeliveryStatus != model.DeliveryPending {
		t.Errorf("expected pending delivery, got %q", sale.DeliveryStatus)
	}

	stored, _ := store.GetSale(ctx, database, sale.ID)
	if stored == nil || len(stored.Items) != 3 {
		t.Fatalf("expected stored sale with 3 lines, got %+v", stored)
	}
	if !stored.Items[2].TotalPrice.IsZero() {
		t.Errorf("expected fully discounted line total 0, got %s", stored.Items[2].TotalPrice)
	}
}

func TestRecordSaleMissingItem(t *testing.T) {
	ctx := context.Background()

	t.Run("fail", func(t *testing.T) {
		l, database := newTestLedger(t)
		bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)

		_, err := l.RecordSale(ctx, newSale(
			model.SaleItem{InventoryID: bolt.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
			model.SaleItem{InventoryID: 9999, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		))
		var lineErr *LineError
		if !errors.As(err, &lineErr) || lineErr.Index != 1 {
			t.Fatalf("expected *LineError on line 1, got %v", err)
		}
		if got := quantity(t, l, bolt.ID); got != 100 {
			t.Errorf("expected Bolt rolled back to 100, got %v", got)
		}
		sales, _ := store.ListSales(ctx, database, 0)
		if len(sales) != 0 {
			t.Errorf("expected no sale persisted, got %d", len(sales))
		}
	})

	t.Run("skip", func(t *testing.T) {
		l, database := newTestLedger(t, WithMissingPolicy(MissingSkip))
		bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)

		res, err := l.RecordSale(ctx, newSale(
			model.SaleItem{InventoryID: 9999, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
			model.SaleItem{InventoryID: bolt.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
		))
		if err != nil {
			t.Fatalf("RecordSale: %v", err)
		}
		if len(res.Skipped) != 1 || res.Skipped[0] != 0 {
			t.Errorf("expected line 0 skipped, got %v", res.Skipped)
		}
		if len(res.Sale.Items) != 2 {
			t.Errorf("expected both lines persisted, got %d", len(res.Sale.Items))
		}
		if got := quantity(t, l, bolt.ID); got != 90 {
			t.Errorf("expected Bolt 90, got %v", got)
		}
	})
}

func TestRecordSaleValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.RecordSale(ctx, newSale()); !errors.Is(err, ErrNoLines) {
		t.Errorf("expected ErrNoLines, got %v", err)
	}
	_, err := l.RecordSale(ctx, newSale(model.SaleItem{InventoryID: 1, Quantity: -1}))
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}
