// Package ledger keeps per-warehouse stock quantities consistent. Transfers,
// sales and usage records each run in a single database transaction and
// either apply every line or none.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// MissingPolicy decides what happens when a line references an inventory
// item that does not exist.
type MissingPolicy string

const (
	// MissingFail aborts the operation with a *LineError.
	MissingFail MissingPolicy = "fail"
	// MissingSkip leaves the line's stock untouched and reports its index.
	MissingSkip MissingPolicy = "skip"
)

// Ledger is the inventory ledger and the operations that move or consume
// stock.
type Ledger struct {
	db      *sqlx.DB
	missing MissingPolicy
	log     *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMissingPolicy sets the missing-item policy. The default is MissingFail.
func WithMissingPolicy(p MissingPolicy) Option {
	return func(l *Ledger) { l.missing = p }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New returns a Ledger backed by db.
func New(db *sqlx.DB, opts ...Option) *Ledger {
	l := &Ledger{db: db, missing: MissingFail, log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetItem returns an inventory item with its low-stock flag derived.
func (l *Ledger) GetItem(ctx context.Context, id int64) (*model.InventoryItem, error) {
	item, err := store.GetInventoryItem(ctx, l.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ListItems returns every inventory item, or only those of warehouseID when
// it is non-zero.
func (l *Ledger) ListItems(ctx context.Context, warehouseID int64) ([]model.InventoryItem, error) {
	return store.ListInventory(ctx, l.db, store.InventoryFilter{WarehouseID: warehouseID})
}

// FindByName returns the item named exactly itemName in warehouseID, or nil.
func (l *Ledger) FindByName(ctx context.Context, itemName string, warehouseID int64) (*model.InventoryItem, error) {
	return store.FindInventoryByName(ctx, l.db, itemName, warehouseID)
}

// UpdateItem applies patch to the item under a row lock, so stock moved by a
// concurrent transfer, sale or usage is never overwritten with a stale
// quantity. validate may reject the patched item; its error is returned
// unchanged.
func (l *Ledger) UpdateItem(ctx context.Context, id int64, patch model.InventoryPatch, validate func(model.InventoryItem) error) (*model.InventoryItem, error) {
	var updated *model.InventoryItem
	err := l.inTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := store.LockInventoryItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrItemNotFound
		}

		item := patch.Apply(*existing)
		if validate != nil {
			if err := validate(item); err != nil {
				return err
			}
		}

		if item.WarehouseID != existing.WarehouseID {
			w, err := store.GetWarehouse(ctx, tx, item.WarehouseID)
			if err != nil {
				return err
			}
			if w == nil {
				return ErrWarehouseNotFound
			}
		}
		if item.ProductID != existing.ProductID {
			taken, err := store.ProductIDExists(ctx, tx, item.ProductID, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateProductID
			}
		}

		updated, err = store.UpdateInventoryItem(ctx, tx, item)
		if errors.Is(err, store.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdjustQuantity applies quantity += delta without clamping.
func (l *Ledger) AdjustQuantity(ctx context.Context, id int64, delta float64) error {
	return adjust(ctx, l.db, id, delta)
}

func adjust(ctx context.Context, q sqlx.ExtContext, id int64, delta float64) error {
	err := store.AdjustInventoryQuantity(ctx, q, id, delta)
	if errors.Is(err, store.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}

// inTx runs fn in a transaction and commits when it returns nil.
func (l *Ledger) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// lockLine loads the item a line references. Under MissingSkip a missing
// item yields (nil, nil); under MissingFail it is a *LineError.
func (l *Ledger) lockLine(ctx context.Context, tx *sqlx.Tx, index int, inventoryID int64) (*model.InventoryItem, error) {
	item, err := store.LockInventoryItem(ctx, tx, inventoryID)
	if err != nil {
		return nil, err
	}
	if item == nil && l.missing != MissingSkip {
		return nil, &LineError{Index: index, InventoryID: inventoryID, Err: ErrItemNotFound}
	}
	return item, nil
}

func validateQuantities[T any](lines []T, qty func(T) (int64, float64)) error {
	if len(lines) == 0 {
		return ErrNoLines
	}
	for i, line := range lines {
		id, q := qty(line)
		if q <= 0 {
			return &LineError{Index: i, InventoryID: id, Err: ErrInvalidQuantity}
		}
	}
	return nil
}
