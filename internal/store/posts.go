// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/model"
)

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.body, p.status, p.author_id,
	p.featured_image_id, p.meta_title, p.meta_description,
	p.created_at, p.updated_at, p.published_at, p.scheduled_at`

func scanPost(s interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &p.Status, &p.AuthorID,
		&p.FeaturedImageID, &p.MetaTitle, &p.MetaDescription,
		&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt, &p.ScheduledAt)
	return p, err
}

// CreatePostParams holds the fields for creating a post.
type CreatePostParams struct {
	Title           string
	Slug            string
	Excerpt         string
	Body            string
	Status          string
	AuthorID        int64
	FeaturedImageID sql.NullInt64
	MetaTitle       string
	MetaDescription string
	PublishedAt     sql.NullTime
	ScheduledAt     sql.NullTime
}

// CreatePost inserts a new post and returns the stored record.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO posts (title, slug, excerpt, body, status, author_id, featured_image_id,
			meta_title, meta_description, created_at, updated_at, published_at, scheduled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Excerpt, arg.Body, arg.Status, arg.AuthorID, arg.FeaturedImageID,
		arg.MetaTitle, arg.MetaDescription, now, now, arg.PublishedAt, arg.ScheduledAt)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return q.GetPostByID(ctx, id)
}

// GetPostByID fetches a post by primary key.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id))
}

// GetPostBySlug fetches a post by its slug.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.slug = ?`, slug))
}

// CountPostsBySlug returns the number of posts with the given slug,
// excluding the given post ID (0 to exclude none).
func (q *Queries) CountPostsBySlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n, err
}

// ListPostsParams holds the filters for listing posts. Zero values mean
// "no filter" except Limit, which must be positive.
type ListPostsParams struct {
	Status     string
	CategoryID int64
	TagID      int64
	Search     string
	Limit      int64
	Offset     int64
}

// buildPostFilter returns the WHERE clause and arguments for the filters.
func buildPostFilter(arg ListPostsParams) (string, []any) {
	var conds []string
	var args []any

	if arg.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, arg.Status)
	}
	if arg.CategoryID != 0 {
		conds = append(conds, "p.id IN (SELECT post_id FROM post_categories WHERE category_id = ?)")
		args = append(args, arg.CategoryID)
	}
	if arg.TagID != 0 {
		conds = append(conds, "p.id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)")
		args = append(args, arg.TagID)
	}
	if arg.Search != "" {
		conds = append(conds, "(p.title LIKE ? OR p.body LIKE ?)")
		pattern := "%" + arg.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPosts returns posts matching the filters, newest first.
func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]model.Post, error) {
	where, args := buildPostFilter(arg)
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts p`+where+
			` ORDER BY COALESCE(p.published_at, p.created_at) DESC, p.id DESC LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPosts returns the number of posts matching the filters.
func (q *Queries) CountPosts(ctx context.Context, arg ListPostsParams) (int64, error) {
	where, args := buildPostFilter(arg)

	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n)
	return n, err
}

// UpdatePostParams holds the fields for updating a post.
type UpdatePostParams struct {
	ID              int64
	Title           string
	Slug            string
	Excerpt         string
	Body            string
	Status          string
	FeaturedImageID sql.NullInt64
	MetaTitle       string
	MetaDescription string
	UpdatedAt       time.Time
	PublishedAt     sql.NullTime
	ScheduledAt     sql.NullTime
}

// UpdatePost updates all mutable fields of a post.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, slug = ?, excerpt = ?, body = ?, status = ?, featured_image_id = ?,
			meta_title = ?, meta_description = ?, updated_at = ?, published_at = ?, scheduled_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Excerpt, arg.Body, arg.Status, arg.FeaturedImageID,
		arg.MetaTitle, arg.MetaDescription, arg.UpdatedAt, arg.PublishedAt, arg.ScheduledAt, arg.ID)
	return err
}

// DeletePost removes a post row, returning the number of rows deleted.
func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetPostCategories replaces the category assignments of a post.
func (q *Queries) SetPostCategories(ctx context.Context, postID int64, categoryIDs []int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM post_categories WHERE post_id = ?`, postID); err != nil {
		return err
	}
	for _, cid := range categoryIDs {
		if _, err := q.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_categories (post_id, category_id) VALUES (?, ?)`,
			postID, cid); err != nil {
			return err
		}
	}
	return nil
}

// SetPostTags replaces the tag assignments of a post.
func (q *Queries) SetPostTags(ctx context.Context, postID int64, tagIDs []int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return err
	}
	for _, tid := range tagIDs {
		if _, err := q.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`,
			postID, tid); err != nil {
			return err
		}
	}
	return nil
}

// GetPostCategories returns the categories assigned to a post.
func (q *Queries) GetPostCategories(ctx context.Context, postID int64) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
		FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = ?
		ORDER BY c.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetPostTags returns the tags assigned to a post.
func (q *Queries) GetPostTags(ctx context.Context, postID int64) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// PublishDueScheduledPosts flips scheduled posts whose time has arrived to
// published. Returns the number of posts published.
func (q *Queries) PublishDueScheduledPosts(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET status = ?, published_at = scheduled_at, scheduled_at = NULL, updated_at = ?
		WHERE status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?`,
		model.PostStatusPublished, now, model.PostStatusScheduled, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
