package ledger

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// SaleResult is the persisted sale. Skipped holds the indexes of lines whose
// inventory item was missing under MissingSkip; those lines are stored but
// deduct nothing.
type SaleResult struct {
	Sale    *model.Sale `json:"sale"`
	Skipped []int       `json:"skipped,omitempty"`
}

// UsageResult is the persisted usage record. Skipped is true when the item
// was missing under MissingSkip.
type UsageResult struct {
	Usage   *model.ItemUsage `json:"usage"`
	Skipped bool             `json:"skipped,omitempty"`
}

// RecordSale stores the sale header and lines and deducts each line's
// quantity from its inventory item. Totals are recomputed from the lines.
// Stock is not checked; quantities may go negative.
func (l *Ledger) RecordSale(ctx context.Context, sale model.Sale) (*SaleResult, error) {
	if err := validateQuantities(sale.Items, func(it model.SaleItem) (int64, float64) {
		return it.InventoryID, it.Quantity
	}); err != nil {
		return nil, err
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now()
	}
	if sale.DeliveryStatus == "" {
		sale.DeliveryStatus = model.DeliveryPending
	}
	sale.ApplyTotals()

	lines := sale.Items
	res := &SaleResult{}
	err := l.inTx(ctx, func(tx *sqlx.Tx) error {
		header, err := store.CreateSale(ctx, tx, sale)
		if err != nil {
			return err
		}
		header.Items = make([]model.SaleItem, 0, len(lines))

		for i, line := range lines {
			line.SaleID = header.ID
			saved, err := store.CreateSaleItem(ctx, tx, line)
			if err != nil {
				return err
			}
			header.Items = append(header.Items, *saved)

			skipped, err := l.consume(ctx, tx, i, line.InventoryID, line.Quantity)
			if err != nil {
				return err
			}
			if skipped {
				res.Skipped = append(res.Skipped, i)
			}
		}

		res.Sale = header
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(res.Skipped) > 0 {
		l.log.Warn("sale skipped missing items",
			"sale_id", res.Sale.ID, "skipped", res.Skipped)
	}
	l.log.Info("sale recorded",
		"sale_id", res.Sale.ID, "invoice", res.Sale.InvoiceNo,
		"lines", len(res.Sale.Items), "total", res.Sale.TotalAmount.String())

	return res, nil
}

// RecordUsage stores a usage record and deducts its quantity from the item.
func (l *Ledger) RecordUsage(ctx context.Context, usage model.ItemUsage) (*UsageResult, error) {
	if usage.Quantity <= 0 {
		return nil, &LineError{Index: 0, InventoryID: usage.InventoryID, Err: ErrInvalidQuantity}
	}
	if usage.UsageDate.IsZero() {
		usage.UsageDate = time.Now()
	}

	res := &UsageResult{}
	err := l.inTx(ctx, func(tx *sqlx.Tx) error {
		saved, err := store.CreateItemUsage(ctx, tx, usage)
		if err != nil {
			return err
		}
		res.Usage = saved

		res.Skipped, err = l.consume(ctx, tx, 0, usage.InventoryID, usage.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	if res.Skipped {
		l.log.Warn("usage skipped missing item",
			"usage_id", res.Usage.ID, "inventory_id", usage.InventoryID)
	}
	l.log.Info("usage recorded",
		"usage_id", res.Usage.ID, "inventory_id", usage.InventoryID, "quantity", usage.Quantity)

	return res, nil
}

// consume deducts qty from an item inside tx. It reports true when the item
// was missing and the policy allowed skipping it.
func (l *Ledger) consume(ctx context.Context, tx *sqlx.Tx, index int, inventoryID int64, qty float64) (bool, error) {
	item, err := l.lockLine(ctx, tx, index, inventoryID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return true, nil
	}
	return false, adjust(ctx, tx, item.ID, -qty)
}
