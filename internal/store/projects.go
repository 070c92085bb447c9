package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const taskColumns = `id, project_id, title, description, assigned_to, due_date, status, priority`

// CreateProject inserts a project.
func CreateProject(ctx context.Context, q sqlx.ExtContext, p model.Project) (*model.Project, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO projects (name, location, start_date, end_date, status) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Location, utcPtr(p.StartDate), utcPtr(p.EndDate), p.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return GetProject(ctx, q, id)
}

// GetProject returns a project by ID.
func GetProject(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Project, error) {
	p, err := getOne[model.Project](ctx, q,
		`SELECT id, name, location, start_date, end_date, status FROM projects WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects.
func ListProjects(ctx context.Context, q sqlx.ExtContext) ([]model.Project, error) {
	ps, err := selectAll[model.Project](ctx, q,
		`SELECT id, name, location, start_date, end_date, status FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return ps, nil
}

// CreateTask inserts a task.
func CreateTask(ctx context.Context, q sqlx.ExtContext, t model.Task) (*model.Task, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO tasks (project_id, title, description, assigned_to, due_date, status, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.Title, t.Description, t.AssignedTo, utcPtr(t.DueDate), t.Status, t.Priority,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return GetTask(ctx, q, id)
}

// GetTask returns a task by ID.
func GetTask(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Task, error) {
	t, err := getOne[model.Task](ctx, q, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// ListTasks returns the tasks of a project.
func ListTasks(ctx context.Context, q sqlx.ExtContext, projectID int64) ([]model.Task, error) {
	ts, err := selectAll[model.Task](ctx, q,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return ts, nil
}

// UpdateTaskStatus sets a task's status.
func UpdateTaskStatus(ctx context.Context, q sqlx.ExtContext, id int64, status string) (*model.Task, error) {
	if err := execAffected(ctx, q, `UPDATE tasks SET status = ? WHERE id = ?`, status, id); err != nil {
		return nil, fmt.Errorf("updating task status: %w", err)
	}
	return GetTask(ctx, q, id)
}
