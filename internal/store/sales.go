package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const saleColumns = `id, invoice_no, sale_date, customer_name, customer_contact, customer_location,
	salesperson, subtotal, discount, vat, total_amount, payment_status, payment_method,
	bank_name, account_no, delivery_required, delivery_date, delivery_status, warehouse_id`

// CreateSale inserts a sale header. Totals are stored as given.
func CreateSale(ctx context.Context, q sqlx.ExtContext, s model.Sale) (*model.Sale, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO sales (invoice_no, sale_date, customer_name, customer_contact, customer_location,
		     salesperson, subtotal, discount, vat, total_amount, payment_status, payment_method,
		     bank_name, account_no, delivery_required, delivery_date, delivery_status, warehouse_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.InvoiceNo, s.SaleDate.UTC(), s.CustomerName, s.CustomerContact, s.CustomerLocation,
		s.Salesperson, s.Subtotal, s.Discount, s.VAT, s.TotalAmount, s.PaymentStatus, s.PaymentMethod,
		s.BankName, s.AccountNo, s.DeliveryRequired, utcPtr(s.DeliveryDate), s.DeliveryStatus, s.WarehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating sale: %w", err)
	}
	s.ID = id
	s.Items = nil
	return &s, nil
}

// CreateSaleItem inserts one sale line.
func CreateSaleItem(ctx context.Context, q sqlx.ExtContext, it model.SaleItem) (*model.SaleItem, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO sale_items (sale_id, inventory_id, quantity, unit_price, discount, total_price)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		it.SaleID, it.InventoryID, it.Quantity, it.UnitPrice, it.Discount, it.TotalPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("creating sale item: %w", err)
	}
	it.ID = id
	return &it, nil
}

// GetSale returns a sale header with its lines.
func GetSale(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Sale, error) {
	s, err := getOne[model.Sale](ctx, q, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale: %w", err)
	}
	if s == nil {
		return nil, nil
	}

	s.Items, err = selectAll[model.SaleItem](ctx, q,
		`SELECT id, sale_id, inventory_id, quantity, unit_price, discount, total_price
		 FROM sale_items WHERE sale_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("listing sale items: %w", err)
	}
	return s, nil
}

// ListSales returns sale headers, newest first. A positive limit caps the
// number of rows.
func ListSales(ctx context.Context, q sqlx.ExtContext, limit int) ([]model.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY sale_date DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	sales, err := selectAll[model.Sale](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	return sales, nil
}

// UpdateSaleDelivery sets the delivery status and date of a sale.
func UpdateSaleDelivery(ctx context.Context, q sqlx.ExtContext, id int64, status string, date *time.Time) error {
	err := execAffected(ctx, q,
		`UPDATE sales SET delivery_status = ?, delivery_date = ? WHERE id = ?`,
		status, utcPtr(date), id,
	)
	if err != nil {
		return fmt.Errorf("updating sale delivery: %w", err)
	}
	return nil
}

// CountPendingDeliveries returns sales that require delivery and are not
// yet delivered.
func CountPendingDeliveries(ctx context.Context, q sqlx.ExtContext) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		q.Rebind(`SELECT COUNT(*) FROM sales WHERE delivery_required = ? AND delivery_status = ?`),
		true, model.DeliveryPending,
	)
	if err != nil {
		return 0, fmt.Errorf("counting pending deliveries: %w", err)
	}
	return n, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
