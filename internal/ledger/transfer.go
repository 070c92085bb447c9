package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// TransferLine asks to move Quantity of the source row InventoryID.
type TransferLine struct {
	InventoryID int64   `json:"inventoryId"`
	Quantity    float64 `json:"quantity"`
}

// TransferRequest is a validated transfer header plus its lines.
type TransferRequest struct {
	FromWarehouseID int64          `json:"fromWarehouseId"`
	ToWarehouseID   int64          `json:"toWarehouseId"`
	TransferDate    time.Time      `json:"transferDate"`
	Reference       string         `json:"reference"`
	Notes           string         `json:"notes"`
	Items           []TransferLine `json:"items"`
}

// TransferResult is the persisted transfer. Skipped holds the indexes of
// lines whose source item was missing under MissingSkip.
type TransferResult struct {
	Transfer *model.InventoryTransfer `json:"transfer"`
	Skipped  []int                    `json:"skipped,omitempty"`
}

// Transfer moves each line's quantity from the source warehouse to the
// destination. Lines are applied in order. The destination row is the one
// with the same item name; when there is none a copy of the source row is
// created with product id "<source product id>-<destination warehouse id>".
func (l *Ledger) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, ErrSameWarehouse
	}
	if err := validateQuantities(req.Items, func(t TransferLine) (int64, float64) {
		return t.InventoryID, t.Quantity
	}); err != nil {
		return nil, err
	}
	if req.TransferDate.IsZero() {
		req.TransferDate = time.Now()
	}

	res := &TransferResult{}
	err := l.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range []int64{req.FromWarehouseID, req.ToWarehouseID} {
			w, err := store.GetWarehouse(ctx, tx, id)
			if err != nil {
				return err
			}
			if w == nil {
				return fmt.Errorf("warehouse %d: %w", id, ErrWarehouseNotFound)
			}
		}

		header, err := store.CreateTransfer(ctx, tx, model.InventoryTransfer{
			FromWarehouseID: req.FromWarehouseID,
			ToWarehouseID:   req.ToWarehouseID,
			TransferDate:    req.TransferDate,
			Reference:       req.Reference,
			Notes:           req.Notes,
		})
		if err != nil {
			return err
		}
		header.Items = []model.TransferItem{}

		for i, line := range req.Items {
			src, err := l.lockLine(ctx, tx, i, line.InventoryID)
			if err != nil {
				return err
			}
			if src == nil {
				res.Skipped = append(res.Skipped, i)
				continue
			}

			if err := l.moveLine(ctx, tx, i, src, line.Quantity, req.ToWarehouseID, req.FromWarehouseID); err != nil {
				return err
			}

			ti, err := store.CreateTransferItem(ctx, tx, model.TransferItem{
				TransferID:  header.ID,
				InventoryID: src.ID,
				Quantity:    line.Quantity,
			})
			if err != nil {
				return err
			}
			header.Items = append(header.Items, *ti)
		}

		res.Transfer = header
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(res.Skipped) > 0 {
		l.log.Warn("transfer skipped missing items",
			"transfer_id", res.Transfer.ID, "skipped", res.Skipped)
	}
	l.log.Info("transfer recorded",
		"transfer_id", res.Transfer.ID,
		"from", req.FromWarehouseID, "to", req.ToWarehouseID,
		"lines", len(res.Transfer.Items))

	return res, nil
}

// moveLine decrements src and credits the matching destination row.
func (l *Ledger) moveLine(ctx context.Context, tx *sqlx.Tx, index int, src *model.InventoryItem, qty float64, toID, fromID int64) error {
	if src.WarehouseID != fromID {
		return &LineError{Index: index, InventoryID: src.ID, Err: ErrWrongWarehouse}
	}
	if qty > src.Quantity {
		return &LineError{
			Index:       index,
			InventoryID: src.ID,
			Err:         fmt.Errorf("%w: have %g, want %g", ErrInsufficientStock, src.Quantity, qty),
		}
	}

	if err := adjust(ctx, tx, src.ID, -qty); err != nil {
		return err
	}

	dst, err := store.FindInventoryByName(ctx, tx, src.ItemName, toID)
	if err != nil {
		return err
	}
	if dst != nil {
		return adjust(ctx, tx, dst.ID, qty)
	}

	_, err = store.CreateInventoryItem(ctx, tx, model.InventoryItem{
		ProductID:   fmt.Sprintf("%s-%d", src.ProductID, toID),
		Category:    src.Category,
		ItemName:    src.ItemName,
		Description: src.Description,
		Quantity:    qty,
		Unit:        src.Unit,
		UnitPrice:   src.UnitPrice,
		MinStock:    src.MinStock,
		MaxStock:    src.MaxStock,
		WarehouseID: toID,
	})
	return err
}
