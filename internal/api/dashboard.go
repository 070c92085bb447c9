package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// DashboardHandler serves the summary counters, cached for TTL.
type DashboardHandler struct {
	DB    *sqlx.DB
	Cache cache.Cache
	TTL   time.Duration
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	var stats model.DashboardStats
	hit, err := h.Cache.Get(r.Context(), dashboardKey, &stats)
	if err != nil {
		slog.Warn("dashboard cache read failed", "error", err)
	}
	if hit {
		jsonResponse(w, http.StatusOK, stats)
		return
	}

	fresh, err := store.GetDashboardStats(r.Context(), h.DB)
	if err != nil {
		internalError(w, r, err, "load dashboard")
		return
	}
	if h.TTL > 0 {
		if err := h.Cache.Set(r.Context(), dashboardKey, fresh, h.TTL); err != nil {
			slog.Warn("dashboard cache write failed", "error", err)
		}
	}
	jsonResponse(w, http.StatusOK, fresh)
}
