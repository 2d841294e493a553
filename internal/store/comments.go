// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/bloghost/internal/model"
)

const commentColumns = `id, post_id, user_id, author_name, author_email, body, status,
	ip_address, created_at, updated_at`

// CreateCommentParams holds the fields for creating a comment.
type CreateCommentParams struct {
	PostID      int64
	UserID      sql.NullInt64
	AuthorName  string
	AuthorEmail string
	Body        string
	Status      string
	IPAddress   string
}

// CreateComment inserts a new comment and returns the stored record.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (model.Comment, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO comments (post_id, user_id, author_name, author_email, body, status, ip_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.PostID, arg.UserID, arg.AuthorName, arg.AuthorEmail, arg.Body, arg.Status, arg.IPAddress, now, now)
	if err != nil {
		return model.Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, err
	}
	return q.GetCommentByID(ctx, id)
}

// GetCommentByID fetches a comment by primary key.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (model.Comment, error) {
	var c model.Comment
	err := q.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.AuthorEmail, &c.Body, &c.Status,
			&c.IPAddress, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCommentsByPostParams holds the filters for listing a post's comments.
type ListCommentsByPostParams struct {
	PostID int64
	Status string // empty = all statuses
}

// ListCommentsByPost returns a post's comments, oldest first. Anonymous
// callers are served approved comments only; moderators pass an empty status.
func (q *Queries) ListCommentsByPost(ctx context.Context, arg ListCommentsByPostParams) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = ?`
	args := []any{arg.PostID}
	if arg.Status != "" {
		query += ` AND status = ?`
		args = append(args, arg.Status)
	}
	query += ` ORDER BY created_at`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.AuthorEmail, &c.Body, &c.Status,
			&c.IPAddress, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListCommentsByStatus returns all comments with the given status, newest
// first, for the moderation queue.
func (q *Queries) ListCommentsByStatus(ctx context.Context, status string) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE status = ? ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.AuthorEmail, &c.Body, &c.Status,
			&c.IPAddress, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateCommentStatusParams holds the fields for a moderation decision.
type UpdateCommentStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

// UpdateCommentStatus sets a comment's moderation status.
func (q *Queries) UpdateCommentStatus(ctx context.Context, arg UpdateCommentStatusParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE comments SET status = ?, updated_at = ? WHERE id = ?`,
		arg.Status, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteComment removes a comment row, returning the number of rows deleted.
func (q *Queries) DeleteComment(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
