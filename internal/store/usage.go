package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const usageColumns = `id, inventory_id, project_id, task_id, quantity, usage_date, recorded_by`

// UsageFilter narrows ListItemUsage. Zero values mean no filter.
type UsageFilter struct {
	InventoryID int64
	ProjectID   int64
}

// CreateItemUsage inserts a usage record.
func CreateItemUsage(ctx context.Context, q sqlx.ExtContext, u model.ItemUsage) (*model.ItemUsage, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO item_usage (inventory_id, project_id, task_id, quantity, usage_date, recorded_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.InventoryID, u.ProjectID, u.TaskID, u.Quantity, u.UsageDate.UTC(), u.RecordedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item usage: %w", err)
	}
	u.ID = id
	return &u, nil
}

// ListItemUsage returns usage records, newest first.
func ListItemUsage(ctx context.Context, q sqlx.ExtContext, f UsageFilter) ([]model.ItemUsage, error) {
	query := `SELECT ` + usageColumns + ` FROM item_usage WHERE 1 = 1`
	var args []any
	if f.InventoryID != 0 {
		query += ` AND inventory_id = ?`
		args = append(args, f.InventoryID)
	}
	if f.ProjectID != 0 {
		query += ` AND project_id = ?`
		args = append(args, f.ProjectID)
	}
	query += ` ORDER BY usage_date DESC, id DESC`

	usage, err := selectAll[model.ItemUsage](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing item usage: %w", err)
	}
	return usage, nil
}
