// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/bloghost/internal/model"
)

// CreateCategoryParams holds the fields for creating a category.
type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description string
}

// CreateCategory inserts a new category and returns the stored record.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (name, slug, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Description, now, now)
	if err != nil {
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return q.GetCategoryByID(ctx, id)
}

// GetCategoryByID fetches a category by primary key.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, description, created_at, updated_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetCategoryBySlug fetches a category by its slug.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, description, created_at, updated_at FROM categories WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CountCategoriesBySlug returns the number of categories with the given
// slug, excluding the given ID (0 to exclude none).
func (q *Queries) CountCategoriesBySlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n, err
}

// ListCategories returns all categories ordered by name.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, slug, description, created_at, updated_at FROM categories ORDER BY name`)
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

// UpdateCategoryParams holds the fields for updating a category.
type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	UpdatedAt   time.Time
}

// UpdateCategory updates a category's fields.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.Slug, arg.Description, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteCategory removes a category row, returning the number of rows deleted.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateTagParams holds the fields for creating a tag.
type CreateTagParams struct {
	Name string
	Slug string
}

// CreateTag inserts a new tag and returns the stored record.
func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (model.Tag, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO tags (name, slug, created_at) VALUES (?, ?, ?)`,
		arg.Name, arg.Slug, time.Now())
	if err != nil {
		return model.Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Tag{}, err
	}
	return q.GetTagByID(ctx, id)
}

// GetTagByID fetches a tag by primary key.
func (q *Queries) GetTagByID(ctx context.Context, id int64) (model.Tag, error) {
	var t model.Tag
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM tags WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	return t, err
}

// GetTagBySlug fetches a tag by its slug.
func (q *Queries) GetTagBySlug(ctx context.Context, slug string) (model.Tag, error) {
	var t model.Tag
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM tags WHERE slug = ?`, slug).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	return t, err
}

// CountTagsBySlug returns the number of tags with the given slug,
// excluding the given ID (0 to exclude none).
func (q *Queries) CountTagsBySlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n, err
}

// ListTags returns all tags ordered by name.
func (q *Queries) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM tags ORDER BY name`)
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

// UpdateTagParams holds the fields for updating a tag.
type UpdateTagParams struct {
	ID   int64
	Name string
	Slug string
}

// UpdateTag updates a tag's fields.
func (q *Queries) UpdateTag(ctx context.Context, arg UpdateTagParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE tags SET name = ?, slug = ? WHERE id = ?`, arg.Name, arg.Slug, arg.ID)
	return err
}

// DeleteTag removes a tag row, returning the number of rows deleted.
func (q *Queries) DeleteTag(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
