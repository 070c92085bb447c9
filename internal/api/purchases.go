package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// PurchasesHandler handles purchase endpoints.
type PurchasesHandler struct {
	DB    *sqlx.DB
	Cache cache.Cache
}

type purchaseLine struct {
	Category  string           `json:"category"`
	ItemName  string           `json:"itemName"`
	Model     string           `json:"model"`
	Brand     string           `json:"brand"`
	Color     string           `json:"color"`
	SerialNo  string           `json:"serialNo"`
	Quantity  float64          `json:"quantity"`
	Unit      string           `json:"unit"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	VAT       *decimal.Decimal `json:"vat"`
}

// purchaseStatus in the body is ignored; it is always derived.
type createPurchaseRequest struct {
	model.PurchasePatch
	Items []purchaseLine `json:"items"`
}

// validatePurchase checks enumerations and required fields of a merged purchase.
func validatePurchase(p model.Purchase) string {
	switch {
	case p.InvoiceNo == "" || p.SellerName == "":
		return "invoiceNo and sellerName required"
	case !model.ValidPurchaseType(p.PurchaseType):
		return "invalid purchaseType"
	case !model.ValidTracking(p.ItemPickupStatus) || !model.ValidTracking(p.ReceiptStatus) || !model.ValidTracking(p.PaymentStatus):
		return "tracking states must be fully, partially, or not"
	case p.PurchaseDate.IsZero():
		return "purchaseDate required"
	}
	return ""
}

// List handles GET /api/purchases.
func (h *PurchasesHandler) List(w http.ResponseWriter, r *http.Request) {
	purchaseType := r.URL.Query().Get("type")
	if purchaseType != "" && !model.ValidPurchaseType(purchaseType) {
		jsonError(w, http.StatusBadRequest, "invalid type")
		return
	}

	ps, err := store.ListPurchases(r.Context(), h.DB, purchaseType)
	if err != nil {
		internalError(w, r, err, "list purchases")
		return
	}
	jsonResponse(w, http.StatusOK, ps)
}

// Get handles GET /api/purchases/{id}.
func (h *PurchasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "purchase")
	if !ok {
		return
	}

	p, err := store.GetPurchase(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get purchase")
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "purchase not found")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// ListItems handles GET /api/purchases/{id}/items.
func (h *PurchasesHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "purchase")
	if !ok {
		return
	}

	items, err := store.ListPurchaseItems(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "list purchase items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/purchases. Header and items are stored together.
func (h *PurchasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := model.Purchase{PurchaseDate: time.Now()}.Merge(req.PurchasePatch)
	if msg := validatePurchase(p); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	for _, line := range req.Items {
		if line.ItemName == "" || line.Unit == "" || line.Quantity <= 0 {
			jsonError(w, http.StatusBadRequest, "every item needs itemName, unit, and a positive quantity")
			return
		}
	}

	taken, err := store.PurchaseInvoiceExists(r.Context(), h.DB, p.InvoiceNo, 0)
	if err != nil {
		internalError(w, r, err, "check invoice")
		return
	}
	if taken {
		jsonError(w, http.StatusConflict, "invoiceNo already exists")
		return
	}

	tx, err := h.DB.BeginTxx(r.Context(), nil)
	if err != nil {
		internalError(w, r, err, "create purchase")
		return
	}
	defer tx.Rollback()

	created, err := store.CreatePurchase(r.Context(), tx, p)
	if store.IsUniqueViolation(err) {
		jsonError(w, http.StatusConflict, "invoiceNo already exists")
		return
	}
	if err != nil {
		internalError(w, r, err, "create purchase")
		return
	}
	for _, line := range req.Items {
		vat := model.DefaultVAT
		if line.VAT != nil {
			vat = *line.VAT
		}
		_, err := store.CreatePurchaseItem(r.Context(), tx, model.PurchaseItem{
			PurchaseID: created.ID,
			Category:   line.Category,
			ItemName:   line.ItemName,
			Model:      line.Model,
			Brand:      line.Brand,
			Color:      line.Color,
			SerialNo:   line.SerialNo,
			Quantity:   line.Quantity,
			Unit:       line.Unit,
			UnitPrice:  line.UnitPrice,
			VAT:        vat,
			TotalPrice: model.PurchaseLineTotal(line.Quantity, line.UnitPrice, vat),
		})
		if err != nil {
			internalError(w, r, err, "create purchase item")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		internalError(w, r, err, "create purchase")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("purchase created", "user", GetClaims(r.Context()).Username,
		"invoice", created.InvoiceNo, "status", created.PurchaseStatus, "items", len(req.Items))
	jsonResponse(w, http.StatusCreated, created)
}

// Update handles PUT /api/purchases/{id}. The status is re-derived from the
// merged tracking states.
func (h *PurchasesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "purchase")
	if !ok {
		return
	}

	var patch model.PurchasePatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := store.GetPurchase(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get purchase")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "purchase not found")
		return
	}

	merged := existing.Merge(patch)
	if msg := validatePurchase(merged); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	if merged.InvoiceNo != existing.InvoiceNo {
		taken, err := store.PurchaseInvoiceExists(r.Context(), h.DB, merged.InvoiceNo, id)
		if err != nil {
			internalError(w, r, err, "check invoice")
			return
		}
		if taken {
			jsonError(w, http.StatusConflict, "invoiceNo already exists")
			return
		}
	}

	updated, err := store.UpdatePurchase(r.Context(), h.DB, merged)
	if store.IsUniqueViolation(err) {
		jsonError(w, http.StatusConflict, "invoiceNo already exists")
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "purchase not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "update purchase")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("purchase updated", "user", GetClaims(r.Context()).Username,
		"invoice", updated.InvoiceNo, "status", updated.PurchaseStatus)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/purchases/{id}.
func (h *PurchasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "purchase")
	if !ok {
		return
	}

	tx, err := h.DB.BeginTxx(r.Context(), nil)
	if err != nil {
		internalError(w, r, err, "delete purchase")
		return
	}
	defer tx.Rollback()

	err = store.DeletePurchase(r.Context(), tx, id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "purchase not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "delete purchase")
		return
	}
	if err := tx.Commit(); err != nil {
		internalError(w, r, err, "delete purchase")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("purchase deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "purchase deleted"})
}
