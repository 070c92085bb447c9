package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const userColumns = `id, username, password_hash, role, created_at, deleted_at`

// CreateUser creates a new user.
func CreateUser(ctx context.Context, q sqlx.ExtContext, username, passwordHash, role string) (*model.User, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return GetUser(ctx, q, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, q sqlx.ExtContext, id int64) (*model.User, error) {
	u, err := getOne[model.User](ctx, q,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns the active user with the given username.
func GetUserByUsername(ctx context.Context, q sqlx.ExtContext, username string) (*model.User, error) {
	u, err := getOne[model.User](ctx, q,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND deleted_at IS NULL`, username)
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, q sqlx.ExtContext) ([]model.User, error) {
	users, err := selectAll[model.User](ctx, q,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of non-deleted users.
func CountUsers(ctx context.Context, q sqlx.ExtContext) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// UpdateUser updates a user's role.
func UpdateUser(ctx context.Context, q sqlx.ExtContext, id int64, role string) error {
	err := execAffected(ctx, q,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, q sqlx.ExtContext, id int64, passwordHash string) error {
	err := execAffected(ctx, q,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, q sqlx.ExtContext, id int64) error {
	err := execAffected(ctx, q,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
