package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase types.
const (
	PurchaseLocal          = "LOCAL"
	PurchaseImported       = "IMPORTED"
	PurchaseWithoutReceipt = "WITHOUT_RECEIPT"
)

// Tracking states for pickup, receipt and payment.
const (
	TrackingFully     = "fully"
	TrackingPartially = "partially"
	TrackingNot       = "not"
)

// Derived purchase states.
const (
	PurchaseComplete   = "complete"
	PurchaseIncomplete = "incomplete"
)

// Purchase is a supplier invoice with three independently tracked states.
type Purchase struct {
	ID               int64           `json:"id" db:"id"`
	InvoiceNo        string          `json:"invoiceNo" db:"invoice_no"`
	PurchaseType     string          `json:"purchaseType" db:"purchase_type"`
	PurchaseDate     time.Time       `json:"purchaseDate" db:"purchase_date"`
	SellerName       string          `json:"sellerName" db:"seller_name"`
	SellerLocation   string          `json:"sellerLocation,omitempty" db:"seller_location"`
	TotalAmount      decimal.Decimal `json:"totalAmount" db:"total_amount"`
	TransportFees    decimal.Decimal `json:"transportFees" db:"transport_fees"`
	HandlingFees     decimal.Decimal `json:"handlingFees" db:"handling_fees"`
	CommissionFees   decimal.Decimal `json:"commissionFees" db:"commission_fees"`
	ItemPickupStatus string          `json:"itemPickupStatus" db:"item_pickup_status"`
	ReceiptStatus    string          `json:"receiptStatus" db:"receipt_status"`
	PaymentStatus    string          `json:"paymentStatus" db:"payment_status"`
	PurchaseStatus   string          `json:"purchaseStatus" db:"purchase_status"`
}

// PurchaseItem is one line of a purchase.
type PurchaseItem struct {
	ID         int64           `json:"id" db:"id"`
	PurchaseID int64           `json:"purchaseId" db:"purchase_id"`
	Category   string          `json:"category,omitempty" db:"category"`
	ItemName   string          `json:"itemName" db:"item_name"`
	Model      string          `json:"model,omitempty" db:"model"`
	Brand      string          `json:"brand,omitempty" db:"brand"`
	Color      string          `json:"color,omitempty" db:"color"`
	SerialNo   string          `json:"serialNo,omitempty" db:"serial_no"`
	Quantity   float64         `json:"quantity" db:"quantity"`
	Unit       string          `json:"unit" db:"unit"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
	VAT        decimal.Decimal `json:"vat" db:"vat"`
	TotalPrice decimal.Decimal `json:"totalPrice" db:"total_price"`
}

// DerivePurchaseStatus is complete only when all three tracking states are fully.
func DerivePurchaseStatus(pickup, receipt, payment string) string {
	if pickup == TrackingFully && receipt == TrackingFully && payment == TrackingFully {
		return PurchaseComplete
	}
	return PurchaseIncomplete
}

// Normalize fills defaulted tracking states and re-derives PurchaseStatus.
func (p *Purchase) Normalize() {
	if p.ItemPickupStatus == "" {
		p.ItemPickupStatus = TrackingNot
	}
	if p.ReceiptStatus == "" {
		p.ReceiptStatus = TrackingNot
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = TrackingNot
	}
	p.PurchaseStatus = DerivePurchaseStatus(p.ItemPickupStatus, p.ReceiptStatus, p.PaymentStatus)
}

// PurchasePatch is a partial update of a purchase. PurchaseStatus is not
// settable.
type PurchasePatch struct {
	InvoiceNo        *string          `json:"invoiceNo"`
	PurchaseType     *string          `json:"purchaseType"`
	PurchaseDate     *time.Time       `json:"purchaseDate"`
	SellerName       *string          `json:"sellerName"`
	SellerLocation   *string          `json:"sellerLocation"`
	TotalAmount      *decimal.Decimal `json:"totalAmount"`
	TransportFees    *decimal.Decimal `json:"transportFees"`
	HandlingFees     *decimal.Decimal `json:"handlingFees"`
	CommissionFees   *decimal.Decimal `json:"commissionFees"`
	ItemPickupStatus *string          `json:"itemPickupStatus"`
	ReceiptStatus    *string          `json:"receiptStatus"`
	PaymentStatus    *string          `json:"paymentStatus"`
}

// Merge applies the patch over the existing purchase and re-derives the
// status from the merged tracking states.
func (p Purchase) Merge(patch PurchasePatch) Purchase {
	if patch.InvoiceNo != nil {
		p.InvoiceNo = *patch.InvoiceNo
	}
	if patch.PurchaseType != nil {
		p.PurchaseType = *patch.PurchaseType
	}
	if patch.PurchaseDate != nil {
		p.PurchaseDate = *patch.PurchaseDate
	}
	if patch.SellerName != nil {
		p.SellerName = *patch.SellerName
	}
	if patch.SellerLocation != nil {
		p.SellerLocation = *patch.SellerLocation
	}
	if patch.TotalAmount != nil {
		p.TotalAmount = *patch.TotalAmount
	}
	if patch.TransportFees != nil {
		p.TransportFees = *patch.TransportFees
	}
	if patch.HandlingFees != nil {
		p.HandlingFees = *patch.HandlingFees
	}
	if patch.CommissionFees != nil {
		p.CommissionFees = *patch.CommissionFees
	}
	if patch.ItemPickupStatus != nil {
		p.ItemPickupStatus = *patch.ItemPickupStatus
	}
	if patch.ReceiptStatus != nil {
		p.ReceiptStatus = *patch.ReceiptStatus
	}
	if patch.PaymentStatus != nil {
		p.PaymentStatus = *patch.PaymentStatus
	}
	p.Normalize()
	return p
}

// ValidTracking reports whether s is a known tracking state.
func ValidTracking(s string) bool {
	return s == TrackingFully || s == TrackingPartially || s == TrackingNot
}

// ValidPurchaseType reports whether s is a known purchase type.
func ValidPurchaseType(s string) bool {
	return s == PurchaseLocal || s == PurchaseImported || s == PurchaseWithoutReceipt
}

// PurchaseLineTotal returns quantity * unitPrice * (1 + vatPct/100).
func PurchaseLineTotal(quantity float64, unitPrice, vatPct decimal.Decimal) decimal.Decimal {
	gross := decimal.NewFromFloat(quantity).Mul(unitPrice)
	factor := decimal.NewFromInt(1).Add(vatPct.Div(hundred))
	return gross.Mul(factor).Round(2)
}
