// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/bloghost/internal/model"
)

const mediaColumns = `id, uuid, filename, original_name, mime_type, size, width, height,
	file_path, thumb_path, uploaded_by, created_at`

func scanMedia(s interface{ Scan(...any) error }) (model.Media, error) {
	var m model.Media
	err := s.Scan(&m.ID, &m.UUID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size, &m.Width, &m.Height,
		&m.FilePath, &m.ThumbPath, &m.UploadedBy, &m.CreatedAt)
	return m, err
}

// CreateMediaParams holds the fields for recording an uploaded file.
type CreateMediaParams struct {
	UUID         string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Width        int
	Height       int
	FilePath     string
	ThumbPath    string
	UploadedBy   sql.NullInt64
}

// CreateMedia records an uploaded file and returns the stored row.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.Media, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO media (uuid, filename, original_name, mime_type, size, width, height,
			file_path, thumb_path, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.UUID, arg.Filename, arg.OriginalName, arg.MimeType, arg.Size, arg.Width, arg.Height,
		arg.FilePath, arg.ThumbPath, arg.UploadedBy, time.Now())
	if err != nil {
		return model.Media{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Media{}, err
	}
	return q.GetMediaByID(ctx, id)
}

// GetMediaByID fetches a media record by primary key.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (model.Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
}

// GetMediaByUUID fetches a media record by its public identifier.
func (q *Queries) GetMediaByUUID(ctx context.Context, uuid string) (model.Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE uuid = ?`, uuid))
}

// ListMediaParams holds paging parameters for the media library.
type ListMediaParams struct {
	Limit  int
	Offset int
}

// ListMedia returns media records, newest first.
func (q *Queries) ListMedia(ctx context.Context, arg ListMediaParams) ([]model.Media, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CountMedia returns the total number of media records.
func (q *Queries) CountMedia(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media`).Scan(&n)
	return n, err
}

// DeleteMedia removes a media record, returning the number of rows deleted.
// The caller is responsible for removing the files from disk.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
