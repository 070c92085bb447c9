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

// MachineryHandler handles machinery and service history endpoints.
type MachineryHandler struct {
	DB    *sqlx.DB
	Cache cache.Cache
}

type serviceRequest struct {
	ServiceDate *time.Time       `json:"serviceDate"`
	ServiceType string           `json:"serviceType"`
	Cost        *decimal.Decimal `json:"cost"`
	Vendor      string           `json:"vendor"`
	Notes       string           `json:"notes"`
}

// List handles GET /api/machinery.
func (h *MachineryHandler) List(w http.ResponseWriter, r *http.Request) {
	ms, err := store.ListMachinery(r.Context(), h.DB)
	if err != nil {
		internalError(w, r, err, "list machinery")
		return
	}
	jsonResponse(w, http.StatusOK, ms)
}

// Get handles GET /api/machinery/{id}.
func (h *MachineryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "machinery")
	if !ok {
		return
	}

	m, err := store.GetMachinery(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get machinery")
		return
	}
	if m == nil {
		jsonError(w, http.StatusNotFound, "machinery not found")
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// Create handles POST /api/machinery.
func (h *MachineryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var m model.Machinery
	if err := decodeJSON(r, &m); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.Name == "" || m.Category == "" {
		jsonError(w, http.StatusBadRequest, "name and category required")
		return
	}

	created, err := store.CreateMachinery(r.Context(), h.DB, m)
	if err != nil {
		internalError(w, r, err, "create machinery")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("machinery created", "user", GetClaims(r.Context()).Username, "name", created.Name)
	jsonResponse(w, http.StatusCreated, created)
}

// Update handles PUT /api/machinery/{id}.
func (h *MachineryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "machinery")
	if !ok {
		return
	}

	var m model.Machinery
	if err := decodeJSON(r, &m); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.Name == "" || m.Category == "" {
		jsonError(w, http.StatusBadRequest, "name and category required")
		return
	}
	m.ID = id

	updated, err := store.UpdateMachinery(r.Context(), h.DB, m)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "machinery not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "update machinery")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/machinery/{id}.
func (h *MachineryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "machinery")
	if !ok {
		return
	}

	err := store.DeleteMachinery(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "machinery not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "delete machinery")
		return
	}

	invalidateDashboard(r.Context(), h.Cache)
	slog.Info("machinery deleted", "user", GetClaims(r.Context()).Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "machinery deleted"})
}

// ListServices handles GET /api/machinery/{id}/services.
func (h *MachineryHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "machinery")
	if !ok {
		return
	}

	services, err := store.ListMachineryServices(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "list services")
		return
	}
	jsonResponse(w, http.StatusOK, services)
}

// CreateService handles POST /api/machinery/{id}/services.
func (h *MachineryHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "machinery")
	if !ok {
		return
	}

	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ServiceType == "" {
		jsonError(w, http.StatusBadRequest, "serviceType required")
		return
	}

	m, err := store.GetMachinery(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get machinery")
		return
	}
	if m == nil {
		jsonError(w, http.StatusNotFound, "machinery not found")
		return
	}

	svc := model.MachineryService{
		MachineryID: id,
		ServiceDate: time.Now(),
		ServiceType: req.ServiceType,
		Cost:        req.Cost,
		Vendor:      req.Vendor,
		Notes:       req.Notes,
	}
	if req.ServiceDate != nil {
		svc.ServiceDate = *req.ServiceDate
	}

	created, err := store.CreateMachineryService(r.Context(), h.DB, svc)
	if err != nil {
		internalError(w, r, err, "create service")
		return
	}

	slog.Info("machinery serviced", "user", GetClaims(r.Context()).Username,
		"machinery", m.Name, "type", created.ServiceType)
	jsonResponse(w, http.StatusCreated, created)
}
