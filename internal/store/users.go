// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/bloghost/internal/model"
)

const userColumns = `id, email, username, password_hash, role, is_active,
	first_name, last_name, bio, avatar_path, created_at, updated_at, last_login_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.FirstName, &u.LastName, &u.Bio, &u.AvatarPath, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
}

// CreateUser inserts a new user and returns the stored record.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO users (email, username, password_hash, role, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Email, arg.Username, arg.PasswordHash, arg.Role, arg.FirstName, arg.LastName, now, now)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail fetches a user by email (case-insensitive).
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
}

// GetUserByUsername fetches a user by username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// ListUsers returns all users ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive,
			&u.FirstName, &u.LastName, &u.Bio, &u.AvatarPath, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsersByEmail returns the number of users with the given email.
func (q *Queries) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? COLLATE NOCASE`, email).Scan(&n)
	return n, err
}

// CountUsersByUsername returns the number of users with the given username.
func (q *Queries) CountUsersByUsername(ctx context.Context, username string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	return n, err
}

// UpdateUserParams holds the mutable profile and admin fields of a user.
type UpdateUserParams struct {
	ID         int64
	Email      string
	Username   string
	Role       string
	IsActive   bool
	FirstName  string
	LastName   string
	Bio        string
	AvatarPath string
	UpdatedAt  time.Time
}

// UpdateUser updates a user's profile and admin fields.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, username = ?, role = ?, is_active = ?,
			first_name = ?, last_name = ?, bio = ?, avatar_path = ?, updated_at = ?
		WHERE id = ?`,
		arg.Email, arg.Username, arg.Role, arg.IsActive,
		arg.FirstName, arg.LastName, arg.Bio, arg.AvatarPath, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserPasswordParams holds the fields for a password change.
type UpdateUserPasswordParams struct {
	ID           int64
	PasswordHash string
	UpdatedAt    time.Time
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserLastLoginParams holds the fields for a login timestamp update.
type UpdateUserLastLoginParams struct {
	ID          int64
	LastLoginAt sql.NullTime
}

// UpdateUserLastLogin records the time of a successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, arg.LastLoginAt, arg.ID)
	return err
}

// DeleteUser removes a user row. Returns the number of rows deleted so the
// caller can distinguish success from "not found".
func (q *Queries) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
