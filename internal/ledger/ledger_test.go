package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/opsledger/internal/db"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// Seeded warehouses.
const (
	whA int64 = 1
	whB int64 = 2
)

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *sqlx.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(database, opts...), database
}

func addItem(t *testing.T, database *sqlx.DB, productID, name string, qty float64, warehouseID int64) *model.InventoryItem {
	t.Helper()
	minStock := 10.0
	item, err := store.CreateInventoryItem(context.Background(), database, model.InventoryItem{
		ProductID:   productID,
		Category:    "Fasteners",
		ItemName:    name,
		Description: "M8 hex",
		Quantity:    qty,
		Unit:        "pcs",
		UnitPrice:   decimal.RequireFromString("0.40"),
		MinStock:    &minStock,
		WarehouseID: warehouseID,
	})
	if err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	return item
}

func quantity(t *testing.T, l *Ledger, id int64) float64 {
	t.Helper()
	item, err := l.GetItem(context.Background(), id)
	if err != nil {
		t.Fatalf("GetItem(%d): %v", id, err)
	}
	return item.Quantity
}

func TestGetItemAndAdjust(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 12, whA)

	if err := l.AdjustQuantity(ctx, bolt.ID, -5); err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	item, err := l.GetItem(ctx, bolt.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Quantity != 7 {
		t.Errorf("expected 7, got %v", item.Quantity)
	}
	if !item.LowStock {
		t.Error("expected low stock at 7 with minimum 10")
	}

	if _, err := l.GetItem(ctx, 9999); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if err := l.AdjustQuantity(ctx, 9999, 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestListItemsAndFindByName(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	addItem(t, database, "ITM-0001", "Bolt", 10, whA)
	addItem(t, database, "ITM-0002", "Nut", 10, whA)
	nutB := addItem(t, database, "ITM-0002-2", "Nut", 3, whB)

	all, _ := l.ListItems(ctx, 0)
	inA, _ := l.ListItems(ctx, whA)
	if len(all) != 3 || len(inA) != 2 {
		t.Errorf("expected 3 total and 2 in A, got %d and %d", len(all), len(inA))
	}

	found, err := l.FindByName(ctx, "Nut", whB)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if found == nil || found.ID != nutB.ID {
		t.Errorf("expected Nut in B, got %+v", found)
	}
	none, _ := l.FindByName(ctx, "Bolt", whB)
	if none != nil {
		t.Errorf("expected no Bolt in B, got %+v", none)
	}
}

func TestTransferCreatesDestinationRow(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)

	res, err := l.Transfer(ctx, TransferRequest{
		FromWarehouseID: whA,
		ToWarehouseID:   whB,
		Items:           []TransferLine{{InventoryID: bolt.ID, Quantity: 30}},
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if got := quantity(t, l, bolt.ID); got != 70 {
		t.Errorf("expected source 70, got %v", got)
	}

	dst, _ := l.FindByName(ctx, "Bolt", whB)
	if dst == nil {
		t.Fatal("expected Bolt to be created in B")
	}
	if dst.Quantity != 30 {
		t.Errorf("expected destination 30, got %v", dst.Quantity)
	}
	if dst.ProductID != "ITM-0001-2" {
		t.Errorf("expected product id ITM-0001-2, got %q", dst.ProductID)
	}
	if dst.Category != bolt.Category || dst.Description != bolt.Description || dst.Unit != bolt.Unit {
		t.Errorf("expected descriptive fields copied, got %+v", dst)
	}
	if !dst.UnitPrice.Equal(bolt.UnitPrice) || dst.MinStock == nil || *dst.MinStock != *bolt.MinStock {
		t.Errorf("expected price and thresholds copied, got %+v", dst)
	}

	items := res.Transfer.Items
	if len(items) != 1 || items[0].InventoryID != bolt.ID || items[0].Quantity != 30 {
		t.Errorf("expected line recorded against source item, got %+v", items)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("expected no skipped lines, got %v", res.Skipped)
	}

	stored, _ := store.GetTransfer(ctx, database, res.Transfer.ID)
	if stored == nil || len(stored.Items) != 1 {
		t.Errorf("expected persisted transfer with 1 line, got %+v", stored)
	}
}

func TestTransferTopsUpExistingRow(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	boltA := addItem(t, database, "ITM-0001", "Bolt", 100, whA)
	boltB := addItem(t, database, "BLT-B", "Bolt", 5, whB)

	_, err := l.Transfer(ctx, TransferRequest{
		FromWarehouseID: whA,
		ToWarehouseID:   whB,
		Items:           []TransferLine{{InventoryID: boltA.ID, Quantity: 30}},
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if got := quantity(t, l, boltB.ID); got != 35 {
		t.Errorf("expected destination 35, got %v", got)
	}
	inB, _ := l.ListItems(ctx, whB)
	if len(inB) != 1 {
		t.Errorf("expected no duplicate row in B, got %d rows", len(inB))
	}
}

func TestTransferConservesQuantity(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	boltA := addItem(t, database, "ITM-0001", "Bolt", 40, whA)
	nutA := addItem(t, database, "ITM-0002", "Nut", 25, whA)
	nutB := addItem(t, database, "NUT-B", "Nut", 8, whB)

	total := func() float64 {
		var sum float64
		items, _ := l.ListItems(ctx, 0)
		for _, it := range items {
			sum += it.Quantity
		}
		return sum
	}
	before := total()

	_, err := l.Transfer(ctx, TransferRequest{
		FromWarehouseID: whA,
		ToWarehouseID:   whB,
		Items: []TransferLine{
			{InventoryID: boltA.ID, Quantity: 12.5},
			{InventoryID: nutA.ID, Quantity: 25},
		},
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if after := total(); after != before {
		t.Errorf("expected total %v to be conserved, got %v", before, after)
	}
	if got := quantity(t, l, nutA.ID) + quantity(t, l, nutB.ID); got != 33 {
		t.Errorf("expected Nut pair to sum to 33, got %v", got)
	}
}

func TestTransferRejectsBadRequests(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 10, whA)
	nutB := addItem(t, database, "NUT-B", "Nut", 10, whB)

	tests := []struct {
		name     string
		req      TransferRequest
		expected error
	}{
		{
			name:     "same warehouse",
			req:      TransferRequest{FromWarehouseID: whA, ToWarehouseID: whA, Items: []TransferLine{{bolt.ID, 1}}},
			expected: ErrSameWarehouse,
		},
		{
			name:     "no lines",
			req:      TransferRequest{FromWarehouseID: whA, ToWarehouseID: whB},
			expected: ErrNoLines,
		},
		{
			name:     "zero quantity",
			req:      TransferRequest{FromWarehouseID: whA, ToWarehouseID: whB, Items: []TransferLine{{bolt.ID, 0}}},
			expected: ErrInvalidQuantity,
		},
		{
			name:     "unknown warehouse",
			req:      TransferRequest{FromWarehouseID: whA, ToWarehouseID: 99, Items: []TransferLine{{bolt.ID, 1}}},
			expected: ErrWarehouseNotFound,
		},
		{
			name:     "item in other warehouse",
			req:      TransferRequest{FromWarehouseID: whA, ToWarehouseID: whB, Items: []TransferLine{{nutB.ID, 1}}},
			expected: ErrWrongWarehouse,
		},
		{
			name:     "more than available",
			req:      TransferRequest{FromWarehouseID: whA, ToWarehouseID: whB, Items: []TransferLine{{bolt.ID, 11}}},
			expected: ErrInsufficientStock,
		},
		{
			name: "lines applied in order",
			req: TransferRequest{FromWarehouseID: whA, ToWarehouseID: whB, Items: []TransferLine{
				{bolt.ID, 6}, {bolt.ID, 6},
			}},
			expected: ErrInsufficientStock,
		},
		{
			name:     "missing item",
			req:      TransferRequest{FromWarehouseID: whA, ToWarehouseID: whB, Items: []TransferLine{{9999, 1}}},
			expected: ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Transfer(ctx, tt.req)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			if !IsDomainError(err) {
				t.Errorf("expected domain error, got %v", err)
			}
		})
	}

	if got := quantity(t, l, bolt.ID); got != 10 {
		t.Errorf("expected source untouched at 10, got %v", got)
	}
	transfers, _ := store.ListTransfers(ctx, database, 0)
	if len(transfers) != 0 {
		t.Errorf("expected no transfers persisted, got %d", len(transfers))
	}
}

func TestTransferRollsBackOnMissingLine(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)

	_, err := l.Transfer(ctx, TransferRequest{
		FromWarehouseID: whA,
		ToWarehouseID:   whB,
		Items: []TransferLine{
			{InventoryID: bolt.ID, Quantity: 30},
			{InventoryID: 9999, Quantity: 1},
		},
	})

	var lineErr *LineError
	if !errors.As(err, &lineErr) {
		t.Fatalf("expected *LineError, got %v", err)
	}
	if lineErr.Index != 1 || lineErr.InventoryID != 9999 {
		t.Errorf("expected line 1 inventory 9999, got %+v", lineErr)
	}

	if got := quantity(t, l, bolt.ID); got != 100 {
		t.Errorf("expected source rolled back to 100, got %v", got)
	}
	if dst, _ := l.FindByName(ctx, "Bolt", whB); dst != nil {
		t.Errorf("expected destination row rolled back, got %+v", dst)
	}
}

func TestTransferSkipPolicy(t *testing.T) {
	l, database := newTestLedger(t, WithMissingPolicy(MissingSkip))
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)

	res, err := l.Transfer(ctx, TransferRequest{
		FromWarehouseID: whA,
		ToWarehouseID:   whB,
		Items: []TransferLine{
			{InventoryID: 9999, Quantity: 1},
			{InventoryID: bolt.ID, Quantity: 30},
		},
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if len(res.Skipped) != 1 || res.Skipped[0] != 0 {
		t.Errorf("expected line 0 skipped, got %v", res.Skipped)
	}
	if len(res.Transfer.Items) != 1 {
		t.Errorf("expected 1 recorded line, got %d", len(res.Transfer.Items))
	}
	if got := quantity(t, l, bolt.ID); got != 70 {
		t.Errorf("expected source 70, got %v", got)
	}
}

func TestConcurrentTransfers(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Transfer(ctx, TransferRequest{
				FromWarehouseID: whA,
				ToWarehouseID:   whB,
				Items:           []TransferLine{{InventoryID: bolt.ID, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Transfer: %v", err)
		}
	}

	if got := quantity(t, l, bolt.ID); got != 100-workers {
		t.Errorf("expected source %d, got %v", 100-workers, got)
	}
	inB, _ := l.ListItems(ctx, whB)
	if len(inB) != 1 || inB[0].Quantity != workers {
		t.Errorf("expected one destination row with %d, got %+v", workers, inB)
	}
}

func TestUpdateItem(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 40, whA)
	addItem(t, database, "ITM-0002", "Nut", 5, whA)

	desc := "M8 zinc"
	got, err := l.UpdateItem(ctx, bolt.ID, model.InventoryPatch{Description: &desc}, nil)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if got.Description != desc || got.Quantity != 40 || got.MinStock == nil {
		t.Errorf("unexpected item after description edit: %+v", got)
	}

	taken := "ITM-0002"
	if _, err := l.UpdateItem(ctx, bolt.ID, model.InventoryPatch{ProductID: &taken}, nil); !errors.Is(err, ErrDuplicateProductID) {
		t.Errorf("expected ErrDuplicateProductID, got %v", err)
	}
	noWarehouse := int64(99)
	if _, err := l.UpdateItem(ctx, bolt.ID, model.InventoryPatch{WarehouseID: &noWarehouse}, nil); !errors.Is(err, ErrWarehouseNotFound) {
		t.Errorf("expected ErrWarehouseNotFound, got %v", err)
	}
	if _, err := l.UpdateItem(ctx, 999, model.InventoryPatch{Description: &desc}, nil); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	rejected := errors.New("rejected")
	zero := 0.0
	_, err = l.UpdateItem(ctx, bolt.ID, model.InventoryPatch{Quantity: &zero}, func(model.InventoryItem) error { return rejected })
	if !errors.Is(err, rejected) {
		t.Errorf("expected validation error, got %v", err)
	}
	if got := quantity(t, l, bolt.ID); got != 40 {
		t.Errorf("rejected edit changed quantity to %v", got)
	}
}

func TestUpdateItemKeepsConcurrentStockMoves(t *testing.T) {
	l, database := newTestLedger(t)
	ctx := context.Background()
	bolt := addItem(t, database, "ITM-0001", "Bolt", 100, whA)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	for i := range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := l.Transfer(ctx, TransferRequest{
				FromWarehouseID: whA,
				ToWarehouseID:   whB,
				Items:           []TransferLine{{InventoryID: bolt.ID, Quantity: 1}},
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			desc := "edit " + string(rune('a'+i))
			_, err := l.UpdateItem(ctx, bolt.ID, model.InventoryPatch{Description: &desc}, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent operation: %v", err)
		}
	}

	if got := quantity(t, l, bolt.ID); got != 100-workers {
		t.Errorf("expected source %d after edits, got %v", 100-workers, got)
	}
}
