package model

import "time"

// ItemUsage records stock consumed outside of a sale, e.g. on a project.
type ItemUsage struct {
	ID          int64     `json:"id" db:"id"`
	InventoryID int64     `json:"inventoryId" db:"inventory_id"`
	ProjectID   *int64    `json:"projectId" db:"project_id"`
	TaskID      *int64    `json:"taskId" db:"task_id"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	UsageDate   time.Time `json:"usageDate" db:"usage_date"`
	RecordedBy  int64     `json:"recordedBy" db:"recorded_by"`
}
