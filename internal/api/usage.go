package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/ledger"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// UsageHandler handles item usage endpoints.
type UsageHandler struct {
	DB     *sqlx.DB
	Ledger *ledger.Ledger
	Cache  cache.Cache
}

type createUsageRequest struct {
	InventoryID int64      `json:"inventoryId"`
	ProjectID   *int64     `json:"projectId"`
	TaskID      *int64     `json:"taskId"`
	Quantity    float64    `json:"quantity"`
	UsageDate   *time.Time `json:"usageDate"`
}

// Create handles POST /api/itemusage. The recorder is the session user.
func (h *UsageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUsageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.InventoryID <= 0 {
		jsonError(w, http.StatusBadRequest, "inventoryId required")
		return
	}

	if req.ProjectID != nil {
		p, err := store.GetProject(r.Context(), h.DB, *req.ProjectID)
		if err != nil {
			internalError(w, r, err, "check project")
			return
		}
		if p == nil {
			jsonError(w, http.StatusBadRequest, "project not found")
			return
		}
	}
	if req.TaskID != nil {
		t, err := store.GetTask(r.Context(), h.DB, *req.TaskID)
		if err != nil {
			internalError(w, r, err, "check task")
			return
		}
		if t == nil {
			jsonError(w, http.StatusBadRequest, "task not found")
			return
		}
	}

	usage := model.ItemUsage{
		InventoryID: req.InventoryID,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		Quantity:    req.Quantity,
		RecordedBy:  GetClaims(r.Context()).UserID,
	}
	if req.UsageDate != nil {
		usage.UsageDate = *req.UsageDate
	}

	res, err := h.Ledger.RecordUsage(r.Context(), usage)
	if err != nil {
		ledgerError(w, r, err, "record usage")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("item usage recorded", "user", GetClaims(r.Context()).Username,
		"usage_id", res.Usage.ID, "inventory_id", res.Usage.InventoryID)
	if res.Skipped {
		setSkippedLines(w, []int{0})
	}
	jsonResponse(w, http.StatusCreated, res.Usage)
}

// List handles GET /api/itemusage.
func (h *UsageHandler) List(w http.ResponseWriter, r *http.Request) {
	inventoryID, ok := queryID(w, r, "inventoryId")
	if !ok {
		return
	}
	projectID, ok := queryID(w, r, "projectId")
	if !ok {
		return
	}

	usage, err := store.ListItemUsage(r.Context(), h.DB, store.UsageFilter{
		InventoryID: inventoryID,
		ProjectID:   projectID,
	})
	if err != nil {
		internalError(w, r, err, "list item usage")
		return
	}
	jsonResponse(w, http.StatusOK, usage)
}
