package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProductIDExists reports whether an inventory row uses productID. A
// non-zero exceptID excludes that row from the check.
func ProductIDExists(ctx context.Context, q sqlx.ExtContext, productID string, exceptID int64) (bool, error) {
	return exists(ctx, q, `SELECT COUNT(*) FROM inventory WHERE product_id = ? AND id <> ?`, productID, exceptID)
}

// SaleInvoiceExists reports whether a sale uses invoiceNo.
func SaleInvoiceExists(ctx context.Context, q sqlx.ExtContext, invoiceNo string) (bool, error) {
	return exists(ctx, q, `SELECT COUNT(*) FROM sales WHERE invoice_no = ?`, invoiceNo)
}

// PurchaseInvoiceExists reports whether a purchase other than exceptID uses
// invoiceNo.
func PurchaseInvoiceExists(ctx context.Context, q sqlx.ExtContext, invoiceNo string, exceptID int64) (bool, error) {
	return exists(ctx, q, `SELECT COUNT(*) FROM purchases WHERE invoice_no = ? AND id <> ?`, invoiceNo, exceptID)
}

func exists(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, q.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return n > 0, nil
}
