package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

// CreateTimesheet records hours worked.
func CreateTimesheet(ctx context.Context, q sqlx.ExtContext, ts model.Timesheet) (*model.Timesheet, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO timesheet (user_id, project_id, task_id, work_date, hours, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ts.UserID, ts.ProjectID, ts.TaskID, ts.WorkDate.UTC(), ts.Hours, ts.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating timesheet: %w", err)
	}
	ts.ID = id
	return &ts, nil
}

// ListTimesheets returns timesheet entries, newest first. A non-zero userID
// restricts the list to that user.
func ListTimesheets(ctx context.Context, q sqlx.ExtContext, userID int64) ([]model.Timesheet, error) {
	query := `SELECT id, user_id, project_id, task_id, work_date, hours, description FROM timesheet`
	var args []any
	if userID != 0 {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY work_date DESC, id DESC`

	entries, err := selectAll[model.Timesheet](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing timesheets: %w", err)
	}
	return entries, nil
}
