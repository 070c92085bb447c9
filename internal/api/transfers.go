package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/ledger"
	"github.com/erazemk/opsledger/internal/store"
)

// TransfersHandler handles inventory transfer endpoints.
type TransfersHandler struct {
	DB     *sqlx.DB
	Ledger *ledger.Ledger
	Cache  cache.Cache
}

type createTransferRequest struct {
	Transfer struct {
		FromWarehouseID int64      `json:"fromWarehouseId"`
		ToWarehouseID   int64      `json:"toWarehouseId"`
		TransferDate    *time.Time `json:"transferDate"`
		Reference       string     `json:"reference"`
		Notes           string     `json:"notes"`
	} `json:"transfer"`
	Items []ledger.TransferLine `json:"items"`
}

// Create handles POST /api/inventory/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := req.Transfer
	if t.FromWarehouseID <= 0 || t.ToWarehouseID <= 0 {
		jsonError(w, http.StatusBadRequest, "fromWarehouseId and toWarehouseId required")
		return
	}
	for _, line := range req.Items {
		if line.InventoryID <= 0 {
			jsonError(w, http.StatusBadRequest, "every item needs an inventoryId")
			return
		}
	}

	tr := ledger.TransferRequest{
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Reference:       t.Reference,
		Notes:           t.Notes,
		Items:           req.Items,
	}
	if t.TransferDate != nil {
		tr.TransferDate = *t.TransferDate
	}

	res, err := h.Ledger.Transfer(r.Context(), tr)
	if err != nil {
		ledgerError(w, r, err, "create transfer")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("transfer created", "user", GetClaims(r.Context()).Username,
		"transfer_id", res.Transfer.ID, "lines", len(res.Transfer.Items))
	setSkippedLines(w, res.Skipped)
	jsonResponse(w, http.StatusCreated, res.Transfer)
}

// List handles GET /api/inventory/transfers.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	transfers, err := store.ListTransfers(r.Context(), h.DB, 0)
	if err != nil {
		internalError(w, r, err, "list transfers")
		return
	}
	jsonResponse(w, http.StatusOK, transfers)
}

// Get handles GET /api/inventory/transfers/{id}.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transfer")
	if !ok {
		return
	}

	transfer, err := store.GetTransfer(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get transfer")
		return
	}
	if transfer == nil {
		jsonError(w, http.StatusNotFound, "transfer not found")
		return
	}
	jsonResponse(w, http.StatusOK, transfer)
}
