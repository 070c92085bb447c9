package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/ledger"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// SalesHandler handles sale endpoints.
type SalesHandler struct {
	DB     *sqlx.DB
	Ledger *ledger.Ledger
	Cache  cache.Cache
}

type saleHeader struct {
	InvoiceNo        string           `json:"invoiceNo"`
	SaleDate         *time.Time       `json:"saleDate"`
	CustomerName     string           `json:"customerName"`
	CustomerContact  string           `json:"customerContact"`
	CustomerLocation string           `json:"customerLocation"`
	Salesperson      string           `json:"salesperson"`
	Discount         decimal.Decimal  `json:"discount"`
	VAT              *decimal.Decimal `json:"vat"`
	PaymentStatus    string           `json:"paymentStatus"`
	PaymentMethod    string           `json:"paymentMethod"`
	BankName         string           `json:"bankName"`
	AccountNo        string           `json:"accountNo"`
	DeliveryRequired bool             `json:"deliveryRequired"`
	DeliveryDate     *time.Time       `json:"deliveryDate"`
	WarehouseID      *int64           `json:"warehouseId"`
}

type saleLine struct {
	InventoryID int64            `json:"inventoryId"`
	Quantity    float64          `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal  `json:"discount"`
}

// Client-supplied subtotal, total and line totals are ignored.
type createSaleRequest struct {
	Sale  saleHeader `json:"sale"`
	Items []saleLine `json:"items"`
}

type deliveryRequest struct {
	DeliveryStatus string     `json:"deliveryStatus"`
	DeliveryDate   *time.Time `json:"deliveryDate"`
}

func validPaymentStatus(s string) bool {
	return s == model.PaymentPaid || s == model.PaymentPartial || s == model.PaymentCredit
}

// List handles GET /api/sales.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := store.ListSales(r.Context(), h.DB, 0)
	if err != nil {
		internalError(w, r, err, "list sales")
		return
	}
	jsonResponse(w, http.StatusOK, sales)
}

// Get handles GET /api/sales/{id}.
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sale")
	if !ok {
		return
	}

	sale, err := store.GetSale(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get sale")
		return
	}
	if sale == nil {
		jsonError(w, http.StatusNotFound, "sale not found")
		return
	}
	jsonResponse(w, http.StatusOK, sale)
}

// Create handles POST /api/sales.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hdr := req.Sale
	switch {
	case hdr.InvoiceNo == "" || hdr.CustomerName == "":
		jsonError(w, http.StatusBadRequest, "invoiceNo and customerName required")
		return
	case !validPaymentStatus(hdr.PaymentStatus):
		jsonError(w, http.StatusBadRequest, "invalid paymentStatus")
		return
	case hdr.Discount.IsNegative():
		jsonError(w, http.StatusBadRequest, "discount must not be negative")
		return
	}

	taken, err := store.SaleInvoiceExists(r.Context(), h.DB, hdr.InvoiceNo)
	if err != nil {
		internalError(w, r, err, "check invoice")
		return
	}
	if taken {
		jsonError(w, http.StatusConflict, "invoiceNo already exists")
		return
	}

	sale := model.Sale{
		InvoiceNo:        hdr.InvoiceNo,
		CustomerName:     hdr.CustomerName,
		CustomerContact:  hdr.CustomerContact,
		CustomerLocation: hdr.CustomerLocation,
		Salesperson:      hdr.Salesperson,
		Discount:         hdr.Discount,
		VAT:              model.DefaultVAT,
		PaymentStatus:    hdr.PaymentStatus,
		PaymentMethod:    hdr.PaymentMethod,
		BankName:         hdr.BankName,
		AccountNo:        hdr.AccountNo,
		DeliveryRequired: hdr.DeliveryRequired,
		DeliveryDate:     hdr.DeliveryDate,
		DeliveryStatus:   model.DeliveryPending,
		WarehouseID:      hdr.WarehouseID,
	}
	if hdr.SaleDate != nil {
		sale.SaleDate = *hdr.SaleDate
	}
	if hdr.VAT != nil {
		sale.VAT = *hdr.VAT
	}

	for _, line := range req.Items {
		if line.InventoryID <= 0 || line.UnitPrice == nil {
			jsonError(w, http.StatusBadRequest, "every item needs an inventoryId and unitPrice")
			return
		}
		if line.Discount.IsNegative() || line.Discount.GreaterThan(decimal.NewFromInt(100)) {
			jsonError(w, http.StatusBadRequest, "item discount must be between 0 and 100")
			return
		}
		sale.Items = append(sale.Items, model.SaleItem{
			InventoryID: line.InventoryID,
			Quantity:    line.Quantity,
			UnitPrice:   *line.UnitPrice,
			Discount:    line.Discount,
		})
	}

	res, err := h.Ledger.RecordSale(r.Context(), sale)
	if store.IsUniqueViolation(err) {
		jsonError(w, http.StatusConflict, "invoiceNo already exists")
		return
	}
	if err != nil {
		ledgerError(w, r, err, "create sale")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("sale created", "user", GetClaims(r.Context()).Username,
		"sale_id", res.Sale.ID, "invoice", res.Sale.InvoiceNo)
	setSkippedLines(w, res.Skipped)
	jsonResponse(w, http.StatusCreated, res.Sale)
}

// UpdateDelivery handles PUT /api/sales/{id}/delivery.
func (h *SalesHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sale")
	if !ok {
		return
	}

	var req deliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DeliveryStatus != model.DeliveryPending && req.DeliveryStatus != model.DeliveryCompleted {
		jsonError(w, http.StatusBadRequest, "invalid deliveryStatus")
		return
	}
	if req.DeliveryStatus == model.DeliveryCompleted && req.DeliveryDate == nil {
		now := time.Now()
		req.DeliveryDate = &now
	}

	err := store.UpdateSaleDelivery(r.Context(), h.DB, id, req.DeliveryStatus, req.DeliveryDate)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "sale not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "update delivery")
		return
	}

	sale, err := store.GetSale(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get sale")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("sale delivery updated", "user", GetClaims(r.Context()).Username,
		"sale_id", id, "status", req.DeliveryStatus)
	jsonResponse(w, http.StatusOK, sale)
}
