package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/ledger"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// dashboardKey is the cache key of the dashboard snapshot.
const dashboardKey = "dashboard"

// invalidateDashboard drops the cached dashboard after a write that
// changes its counters.
func invalidateDashboard(ctx context.Context, c cache.Cache) {
	if err := c.Delete(ctx, dashboardKey); err != nil {
		slog.Warn("failed to invalidate dashboard cache", "error", err)
	}
}

// InventoryHandler handles inventory item endpoints.
type InventoryHandler struct {
	DB     *sqlx.DB
	Ledger *ledger.Ledger
	Cache  cache.Cache
}

type inventoryRequest struct {
	ProductID   string          `json:"productId"`
	Category    string          `json:"category"`
	ItemName    string          `json:"itemName"`
	Description string          `json:"description"`
	Quantity    float64         `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	MinStock    *float64        `json:"minStock"`
	MaxStock    *float64        `json:"maxStock"`
	WarehouseID int64           `json:"warehouseId"`
}

func (req inventoryRequest) item() model.InventoryItem {
	return model.InventoryItem{
		ProductID:   req.ProductID,
		Category:    req.Category,
		ItemName:    req.ItemName,
		Description: req.Description,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
		MinStock:    req.MinStock,
		MaxStock:    req.MaxStock,
		WarehouseID: req.WarehouseID,
	}
}

// validateItem checks the required fields of a complete item.
func validateItem(item model.InventoryItem) string {
	switch {
	case item.ProductID == "" || item.Category == "" || item.ItemName == "" || item.Unit == "":
		return "productId, category, itemName, and unit required"
	case item.WarehouseID <= 0:
		return "warehouseId required"
	case item.UnitPrice.IsNegative():
		return "unitPrice must not be negative"
	case item.MinStock != nil && item.MaxStock != nil && *item.MinStock > *item.MaxStock:
		return "minStock must not exceed maxStock"
	}
	return ""
}

type invalidItemError string

func (e invalidItemError) Error() string { return string(e) }

// checkItemRefs verifies the warehouse exists and the product id is free.
// It writes the error response and returns false on failure.
func (h *InventoryHandler) checkItemRefs(w http.ResponseWriter, r *http.Request, item model.InventoryItem) bool {
	wh, err := store.GetWarehouse(r.Context(), h.DB, item.WarehouseID)
	if err != nil {
		internalError(w, r, err, "check warehouse")
		return false
	}
	if wh == nil {
		jsonError(w, http.StatusBadRequest, "warehouse not found")
		return false
	}

	taken, err := store.ProductIDExists(r.Context(), h.DB, item.ProductID, item.ID)
	if err != nil {
		internalError(w, r, err, "check product id")
		return false
	}
	if taken {
		jsonError(w, http.StatusConflict, "productId already exists")
		return false
	}
	return true
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := queryID(w, r, "warehouseId")
	if !ok {
		return
	}

	items, err := store.ListInventory(r.Context(), h.DB, store.InventoryFilter{
		WarehouseID: warehouseID,
		LowStock:    r.URL.Query().Get("lowStock") == "true",
	})
	if err != nil {
		internalError(w, r, err, "list inventory")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "inventory")
	if !ok {
		return
	}

	item, err := h.Ledger.GetItem(r.Context(), id)
	if errors.Is(err, ledger.ErrItemNotFound) {
		jsonError(w, http.StatusNotFound, "inventory item not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "get inventory item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item := req.item()
	if msg := validateItem(item); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.checkItemRefs(w, r, item) {
		return
	}

	created, err := store.CreateInventoryItem(r.Context(), h.DB, item)
	if store.IsUniqueViolation(err) {
		jsonError(w, http.StatusConflict, "productId already exists")
		return
	}
	if err != nil {
		internalError(w, r, err, "create inventory item")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("inventory item created", "user", GetClaims(r.Context()).Username,
		"id", created.ID, "product_id", created.ProductID, "warehouse_id", created.WarehouseID)
	jsonResponse(w, http.StatusCreated, created)
}

// Update handles PUT /api/inventory/{id} with a partial body.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "inventory")
	if !ok {
		return
	}

	var patch model.InventoryPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Ledger.UpdateItem(r.Context(), id, patch, func(item model.InventoryItem) error {
		if msg := validateItem(item); msg != "" {
			return invalidItemError(msg)
		}
		return nil
	})
	var invalid invalidItemError
	switch {
	case errors.As(err, &invalid):
		jsonError(w, http.StatusBadRequest, string(invalid))
		return
	case errors.Is(err, ledger.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "inventory item not found")
		return
	case errors.Is(err, ledger.ErrWarehouseNotFound):
		jsonError(w, http.StatusBadRequest, "warehouse not found")
		return
	case errors.Is(err, ledger.ErrDuplicateProductID), store.IsUniqueViolation(err):
		jsonError(w, http.StatusConflict, "productId already exists")
		return
	case err != nil:
		internalError(w, r, err, "update inventory item")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("inventory item updated", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/inventory/{id}.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "inventory")
	if !ok {
		return
	}

	err := store.DeleteInventoryItem(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "inventory item not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "delete inventory item")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("inventory item deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "inventory item deleted"})
}

// WarehousesHandler handles warehouse endpoints.
type WarehousesHandler struct {
	DB *sqlx.DB
}

type warehouseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// List handles GET /api/warehouses.
func (h *WarehousesHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, err := store.ListWarehouses(r.Context(), h.DB)
	if err != nil {
		internalError(w, r, err, "list warehouses")
		return
	}
	jsonResponse(w, http.StatusOK, ws)
}

// Create handles POST /api/warehouses.
func (h *WarehousesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	wh, err := store.CreateWarehouse(r.Context(), h.DB, req.Name, req.Location)
	if err != nil {
		internalError(w, r, err, "create warehouse")
		return
	}

	slog.Info("warehouse created", "user", GetClaims(r.Context()).Username, "name", wh.Name)
	jsonResponse(w, http.StatusCreated, wh)
}
