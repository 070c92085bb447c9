package model

import "time"

// Project and task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Project groups tasks, usage and timesheets.
type Project struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Location  string     `json:"location,omitempty" db:"location"`
	StartDate *time.Time `json:"startDate" db:"start_date"`
	EndDate   *time.Time `json:"endDate" db:"end_date"`
	Status    string     `json:"status" db:"status"`
}

// Task is a unit of work within a project.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	ProjectID   int64      `json:"projectId" db:"project_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	AssignedTo  *int64     `json:"assignedTo" db:"assigned_to"`
	DueDate     *time.Time `json:"dueDate" db:"due_date"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
}

// Timesheet is hours worked by a user on a day.
type Timesheet struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	ProjectID   *int64    `json:"projectId" db:"project_id"`
	TaskID      *int64    `json:"taskId" db:"task_id"`
	WorkDate    time.Time `json:"workDate" db:"work_date"`
	Hours       float64   `json:"hours" db:"hours"`
	Description string    `json:"description,omitempty" db:"description"`
}

// ValidStatus reports whether s is a known project or task status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// ValidPriority reports whether s is a known task priority.
func ValidPriority(s string) bool {
	switch s {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DashboardStats summarizes open work for the landing page.
type DashboardStats struct {
	TotalMachinery    int                 `json:"totalMachinery"`
	PendingPurchases  int                 `json:"pendingPurchases"`
	LowStockItems     int                 `json:"lowStockItems"`
	PendingDeliveries int                 `json:"pendingDeliveries"`
	RecentTransfers   []InventoryTransfer `json:"recentTransfers"`
	RecentSales       []Sale              `json:"recentSales"`
}
