package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// ProjectsHandler handles project, task and timesheet endpoints.
type ProjectsHandler struct {
	DB *sqlx.DB
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

type timesheetRequest struct {
	ProjectID   *int64     `json:"projectId"`
	TaskID      *int64     `json:"taskId"`
	WorkDate    *time.Time `json:"workDate"`
	Hours       float64    `json:"hours"`
	Description string     `json:"description"`
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	ps, err := store.ListProjects(r.Context(), h.DB)
	if err != nil {
		internalError(w, r, err, "list projects")
		return
	}
	jsonResponse(w, http.StatusOK, ps)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	p, err := store.GetProject(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get project")
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "project not found")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p model.Project
	if err := decodeJSON(r, &p); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if p.Status == "" {
		p.Status = model.StatusPending
	}
	if !model.ValidStatus(p.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	created, err := store.CreateProject(r.Context(), h.DB, p)
	if err != nil {
		internalError(w, r, err, "create project")
		return
	}

	slog.Info("project created", "user", GetClaims(r.Context()).Username, "name", created.Name)
	jsonResponse(w, http.StatusCreated, created)
}

// ListTasks handles GET /api/projects/{id}/tasks.
func (h *ProjectsHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	tasks, err := store.ListTasks(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "list tasks")
		return
	}
	jsonResponse(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/projects/{id}/tasks.
func (h *ProjectsHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	var t model.Task
	if err := decodeJSON(r, &t); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNormal
	}
	if !model.ValidStatus(t.Status) || !model.ValidPriority(t.Priority) {
		jsonError(w, http.StatusBadRequest, "invalid status or priority")
		return
	}

	p, err := store.GetProject(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, err, "get project")
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "project not found")
		return
	}
	if t.AssignedTo != nil {
		u, err := store.GetUser(r.Context(), h.DB, *t.AssignedTo)
		if err != nil {
			internalError(w, r, err, "get user")
			return
		}
		if u == nil {
			jsonError(w, http.StatusBadRequest, "assigned user not found")
			return
		}
	}
	t.ProjectID = id

	created, err := store.CreateTask(r.Context(), h.DB, t)
	if err != nil {
		internalError(w, r, err, "create task")
		return
	}

	slog.Info("task created", "user", GetClaims(r.Context()).Username, "project", p.Name, "title", created.Title)
	jsonResponse(w, http.StatusCreated, created)
}

// UpdateTaskStatus handles PUT /api/tasks/{id}/status.
func (h *ProjectsHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}

	var req taskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	t, err := store.UpdateTaskStatus(r.Context(), h.DB, id, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		internalError(w, r, err, "update task status")
		return
	}
	jsonResponse(w, http.StatusOK, t)
}

// CreateTimesheet handles POST /api/timesheet. Entries always belong to the
// session user.
func (h *ProjectsHandler) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	var req timesheetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Hours <= 0 || req.Hours > 24 {
		jsonError(w, http.StatusBadRequest, "hours must be between 0 and 24")
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

	entry := model.Timesheet{
		UserID:      GetClaims(r.Context()).UserID,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		WorkDate:    time.Now(),
		Hours:       req.Hours,
		Description: req.Description,
	}
	if req.WorkDate != nil {
		entry.WorkDate = *req.WorkDate
	}

	created, err := store.CreateTimesheet(r.Context(), h.DB, entry)
	if err != nil {
		internalError(w, r, err, "create timesheet")
		return
	}
	jsonResponse(w, http.StatusCreated, created)
}

// ListTimesheets handles GET /api/timesheet. Managers see every entry, other
// users only their own.
func (h *ProjectsHandler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	userID := claims.UserID
	if model.RoleAtLeast(claims.Role, model.RoleManager) {
		userID = 0
	}

	entries, err := store.ListTimesheets(r.Context(), h.DB, userID)
	if err != nil {
		internalError(w, r, err, "list timesheets")
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}
