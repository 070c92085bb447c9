package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const purchaseColumns = `id, invoice_no, purchase_type, purchase_date, seller_name, seller_location,
	total_amount, transport_fees, handling_fees, commission_fees,
	item_pickup_status, receipt_status, payment_status, purchase_status`

const purchaseItemColumns = `id, purchase_id, category, item_name, model, brand, color, serial_no,
	quantity, unit, unit_price, vat, total_price`

// CreatePurchase inserts a purchase header. The caller normalizes the
// tracking states and derived status.
func CreatePurchase(ctx context.Context, q sqlx.ExtContext, p model.Purchase) (*model.Purchase, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO purchases (invoice_no, purchase_type, purchase_date, seller_name, seller_location,
		     total_amount, transport_fees, handling_fees, commission_fees,
		     item_pickup_status, receipt_status, payment_status, purchase_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.InvoiceNo, p.PurchaseType, p.PurchaseDate.UTC(), p.SellerName, p.SellerLocation,
		p.TotalAmount, p.TransportFees, p.HandlingFees, p.CommissionFees,
		p.ItemPickupStatus, p.ReceiptStatus, p.PaymentStatus, p.PurchaseStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("creating purchase: %w", err)
	}
	return GetPurchase(ctx, q, id)
}

// GetPurchase returns a purchase by ID.
func GetPurchase(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Purchase, error) {
	p, err := getOne[model.Purchase](ctx, q,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting purchase: %w", err)
	}
	return p, nil
}

// ListPurchases returns purchases, newest first, optionally of one type.
func ListPurchases(ctx context.Context, q sqlx.ExtContext, purchaseType string) ([]model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases`
	var args []any
	if purchaseType != "" {
		query += ` WHERE purchase_type = ?`
		args = append(args, purchaseType)
	}
	query += ` ORDER BY purchase_date DESC, id DESC`

	ps, err := selectAll[model.Purchase](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	return ps, nil
}

// UpdatePurchase overwrites an existing purchase.
func UpdatePurchase(ctx context.Context, q sqlx.ExtContext, p model.Purchase) (*model.Purchase, error) {
	err := execAffected(ctx, q,
		`UPDATE purchases SET invoice_no = ?, purchase_type = ?, purchase_date = ?, seller_name = ?,
		     seller_location = ?, total_amount = ?, transport_fees = ?, handling_fees = ?,
		     commission_fees = ?, item_pickup_status = ?, receipt_status = ?, payment_status = ?,
		     purchase_status = ?
		 WHERE id = ?`,
		p.InvoiceNo, p.PurchaseType, p.PurchaseDate.UTC(), p.SellerName,
		p.SellerLocation, p.TotalAmount, p.TransportFees, p.HandlingFees,
		p.CommissionFees, p.ItemPickupStatus, p.ReceiptStatus, p.PaymentStatus,
		p.PurchaseStatus, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating purchase: %w", err)
	}
	return GetPurchase(ctx, q, p.ID)
}

// DeletePurchase removes a purchase. Its items cascade.
func DeletePurchase(ctx context.Context, q sqlx.ExtContext, id int64) error {
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM purchase_items WHERE purchase_id = ?`), id); err != nil {
		return fmt.Errorf("deleting purchase items: %w", err)
	}
	if err := execAffected(ctx, q, `DELETE FROM purchases WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting purchase: %w", err)
	}
	return nil
}

// CreatePurchaseItem inserts one purchase line.
func CreatePurchaseItem(ctx context.Context, q sqlx.ExtContext, it model.PurchaseItem) (*model.PurchaseItem, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO purchase_items (purchase_id, category, item_name, model, brand, color, serial_no,
		     quantity, unit, unit_price, vat, total_price)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.PurchaseID, it.Category, it.ItemName, it.Model, it.Brand, it.Color, it.SerialNo,
		it.Quantity, it.Unit, it.UnitPrice, it.VAT, it.TotalPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("creating purchase item: %w", err)
	}
	it.ID = id
	return &it, nil
}

// ListPurchaseItems returns the lines of a purchase.
func ListPurchaseItems(ctx context.Context, q sqlx.ExtContext, purchaseID int64) ([]model.PurchaseItem, error) {
	items, err := selectAll[model.PurchaseItem](ctx, q,
		`SELECT `+purchaseItemColumns+` FROM purchase_items WHERE purchase_id = ? ORDER BY id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("listing purchase items: %w", err)
	}
	return items, nil
}

// CountIncompletePurchases returns purchases whose derived status is not complete.
func CountIncompletePurchases(ctx context.Context, q sqlx.ExtContext) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		q.Rebind(`SELECT COUNT(*) FROM purchases WHERE purchase_status = ?`), model.PurchaseIncomplete)
	if err != nil {
		return 0, fmt.Errorf("counting incomplete purchases: %w", err)
	}
	return n, nil
}
