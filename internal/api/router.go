package api

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/auth"
	"github.com/erazemk/opsledger/internal/cache"
	"github.com/erazemk/opsledger/internal/ledger"
	"github.com/erazemk/opsledger/internal/model"
)

// Deps are the collaborators the handlers share.
type Deps struct {
	DB           *sqlx.DB
	Ledger       *ledger.Ledger
	Issuer       *auth.Issuer
	Cache        cache.Cache
	DashboardTTL time.Duration
	LoginLimiter *RateLimiter
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.LoginLimiter == nil {
		d.LoginLimiter = NewRateLimiter(1, 5)
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, Issuer: d.Issuer}
	usersHandler := &UsersHandler{DB: d.DB}
	inventoryHandler := &InventoryHandler{DB: d.DB, Ledger: d.Ledger, Cache: d.Cache}
	warehousesHandler := &WarehousesHandler{DB: d.DB}
	transfersHandler := &TransfersHandler{DB: d.DB, Ledger: d.Ledger, Cache: d.Cache}
	salesHandler := &SalesHandler{DB: d.DB, Ledger: d.Ledger, Cache: d.Cache}
	usageHandler := &UsageHandler{DB: d.DB, Ledger: d.Ledger, Cache: d.Cache}
	machineryHandler := &MachineryHandler{DB: d.DB, Cache: d.Cache}
	purchasesHandler := &PurchasesHandler{DB: d.DB, Cache: d.Cache}
	documentsHandler := &DocumentsHandler{DB: d.DB}
	projectsHandler := &ProjectsHandler{DB: d.DB}
	dashboardHandler := &DashboardHandler{DB: d.DB, Cache: d.Cache, TTL: d.DashboardTTL}

	authMW := AuthMiddleware(d.Issuer, d.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	manager := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.Handle("POST /api/register", d.LoginLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/login", d.LoginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))

	// Session.
	mux.Handle("POST /api/logout", authed(authHandler.Logout))
	mux.Handle("GET /api/user", authed(authHandler.User))
	mux.Handle("PUT /api/user/password", authed(authHandler.ChangePassword))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Inventory: read and edit (all roles), delete (manager+).
	mux.Handle("GET /api/inventory", authed(inventoryHandler.List))
	mux.Handle("POST /api/inventory", authed(inventoryHandler.Create))
	mux.Handle("GET /api/inventory/{id}", authed(inventoryHandler.Get))
	mux.Handle("PUT /api/inventory/{id}", authed(inventoryHandler.Update))
	mux.Handle("DELETE /api/inventory/{id}", manager(inventoryHandler.Delete))

	// Warehouses: read (all roles), write (manager+).
	mux.Handle("GET /api/warehouses", authed(warehousesHandler.List))
	mux.Handle("POST /api/warehouses", manager(warehousesHandler.Create))

	// Transfers (all roles).
	mux.Handle("POST /api/inventory/transfers", authed(transfersHandler.Create))
	mux.Handle("GET /api/inventory/transfers", authed(transfersHandler.List))
	mux.Handle("GET /api/inventory/transfers/{id}", authed(transfersHandler.Get))

	// Sales (all roles).
	mux.Handle("GET /api/sales", authed(salesHandler.List))
	mux.Handle("POST /api/sales", authed(salesHandler.Create))
	mux.Handle("GET /api/sales/{id}", authed(salesHandler.Get))
	mux.Handle("PUT /api/sales/{id}/delivery", authed(salesHandler.UpdateDelivery))

	// Item usage (all roles).
	mux.Handle("POST /api/itemusage", authed(usageHandler.Create))
	mux.Handle("GET /api/itemusage", authed(usageHandler.List))

	// Machinery: read and record (all roles), edit (manager+).
	mux.Handle("GET /api/machinery", authed(machineryHandler.List))
	mux.Handle("POST /api/machinery", authed(machineryHandler.Create))
	mux.Handle("GET /api/machinery/{id}", authed(machineryHandler.Get))
	mux.Handle("PUT /api/machinery/{id}", manager(machineryHandler.Update))
	mux.Handle("DELETE /api/machinery/{id}", manager(machineryHandler.Delete))
	mux.Handle("GET /api/machinery/{id}/services", authed(machineryHandler.ListServices))
	mux.Handle("POST /api/machinery/{id}/services", authed(machineryHandler.CreateService))

	// Purchases: read and record (all roles), delete (manager+).
	mux.Handle("GET /api/purchases", authed(purchasesHandler.List))
	mux.Handle("POST /api/purchases", authed(purchasesHandler.Create))
	mux.Handle("GET /api/purchases/{id}", authed(purchasesHandler.Get))
	mux.Handle("PUT /api/purchases/{id}", authed(purchasesHandler.Update))
	mux.Handle("DELETE /api/purchases/{id}", manager(purchasesHandler.Delete))
	mux.Handle("GET /api/purchases/{id}/items", authed(purchasesHandler.ListItems))

	// Documents (metadata only).
	mux.Handle("POST /api/documents", authed(documentsHandler.Create))
	mux.Handle("GET /api/documents", authed(documentsHandler.List))

	// Projects, tasks, timesheets.
	mux.Handle("GET /api/projects", authed(projectsHandler.List))
	mux.Handle("POST /api/projects", authed(projectsHandler.Create))
	mux.Handle("GET /api/projects/{id}", authed(projectsHandler.Get))
	mux.Handle("GET /api/projects/{id}/tasks", authed(projectsHandler.ListTasks))
	mux.Handle("POST /api/projects/{id}/tasks", authed(projectsHandler.CreateTask))
	mux.Handle("PUT /api/tasks/{id}/status", authed(projectsHandler.UpdateTaskStatus))
	mux.Handle("POST /api/timesheet", authed(projectsHandler.CreateTimesheet))
	mux.Handle("GET /api/timesheet", authed(projectsHandler.ListTimesheets))

	mux.Handle("GET /api/dashboard", authed(dashboardHandler.Get))

	return mux
}
