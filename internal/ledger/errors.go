package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrSameWarehouse     = errors.New("source and destination warehouse are the same")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrWrongWarehouse    = errors.New("item is not stocked in the source warehouse")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNoLines           = errors.New("at least one line is required")

	// ErrDuplicateProductID is returned by UpdateItem when another row
	// already uses the patched product id.
	ErrDuplicateProductID = errors.New("product id already exists")
)

// LineError reports which line of a multi-line operation failed.
type LineError struct {
	Index       int
	InventoryID int64
	Err         error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (inventory %d): %v", e.Index, e.InventoryID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// IsDomainError reports whether err is a rejection of the request itself
// rather than a storage failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrItemNotFound, ErrWarehouseNotFound, ErrSameWarehouse, ErrInsufficientStock,
		ErrWrongWarehouse, ErrInvalidQuantity, ErrNoLines,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
