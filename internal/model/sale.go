package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses.
const (
	PaymentPaid    = "paid"
	PaymentPartial = "partial"
	PaymentCredit  = "credit"
)

// Delivery statuses.
const (
	DeliveryPending   = "pending"
	DeliveryCompleted = "completed"
)

// DefaultVAT is the VAT percentage applied when none is given.
var DefaultVAT = decimal.NewFromInt(15)

// Sale is an invoice header. Subtotal and TotalAmount are always derived
// from the lines.
type Sale struct {
	ID               int64           `json:"id" db:"id"`
	InvoiceNo        string          `json:"invoiceNo" db:"invoice_no"`
	SaleDate         time.Time       `json:"saleDate" db:"sale_date"`
	CustomerName     string          `json:"customerName" db:"customer_name"`
	CustomerContact  string          `json:"customerContact,omitempty" db:"customer_contact"`
	CustomerLocation string          `json:"customerLocation,omitempty" db:"customer_location"`
	Salesperson      string          `json:"salesperson,omitempty" db:"salesperson"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount         decimal.Decimal `json:"discount" db:"discount"`
	VAT              decimal.Decimal `json:"vat" db:"vat"`
	TotalAmount      decimal.Decimal `json:"totalAmount" db:"total_amount"`
	PaymentStatus    string          `json:"paymentStatus" db:"payment_status"`
	PaymentMethod    string          `json:"paymentMethod,omitempty" db:"payment_method"`
	BankName         string          `json:"bankName,omitempty" db:"bank_name"`
	AccountNo        string          `json:"accountNo,omitempty" db:"account_no"`
	DeliveryRequired bool            `json:"deliveryRequired" db:"delivery_required"`
	DeliveryDate     *time.Time      `json:"deliveryDate" db:"delivery_date"`
	DeliveryStatus   string          `json:"deliveryStatus" db:"delivery_status"`
	WarehouseID      *int64          `json:"warehouseId" db:"warehouse_id"`

	Items []SaleItem `json:"items,omitempty" db:"-"`
}

// SaleItem is one invoiced line. Discount is a percentage of the line value.
type SaleItem struct {
	ID          int64           `json:"id" db:"id"`
	SaleID      int64           `json:"saleId" db:"sale_id"`
	InventoryID int64           `json:"inventoryId" db:"inventory_id"`
	Quantity    float64         `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
	TotalPrice  decimal.Decimal `json:"totalPrice" db:"total_price"`
}

var hundred = decimal.NewFromInt(100)

// SaleLineTotal returns quantity * unitPrice * (1 - discountPct/100).
func SaleLineTotal(quantity float64, unitPrice, discountPct decimal.Decimal) decimal.Decimal {
	gross := decimal.NewFromFloat(quantity).Mul(unitPrice)
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	return gross.Mul(factor).Round(2)
}

// ApplyTotals recomputes every line total, the subtotal and the total amount.
// The total is subtotal - discount + subtotal*vat/100.
func (s *Sale) ApplyTotals() {
	subtotal := decimal.Zero
	for i := range s.Items {
		line := &s.Items[i]
		line.TotalPrice = SaleLineTotal(line.Quantity, line.UnitPrice, line.Discount)
		subtotal = subtotal.Add(line.TotalPrice)
	}
	s.Subtotal = subtotal
	vat := subtotal.Mul(s.VAT).Div(hundred)
	s.TotalAmount = subtotal.Sub(s.Discount).Add(vat).Round(2)
}
