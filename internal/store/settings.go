// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/bloghost/internal/model"
)

const settingColumns = `key, value, type, updated_at, updated_by`

// GetSetting fetches a single setting by its stored key.
func (q *Queries) GetSetting(ctx context.Context, key string) (model.Setting, error) {
	var s model.Setting
	err := q.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE key = ?`, key).
		Scan(&s.Key, &s.Value, &s.Type, &s.UpdatedAt, &s.UpdatedBy)
	return s, err
}

// ListSettings returns all settings ordered by key.
func (q *Queries) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+settingColumns+` FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Type, &s.UpdatedAt, &s.UpdatedBy); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// UpsertSettingParams holds the fields for writing a setting.
type UpsertSettingParams struct {
	Key       string
	Value     string
	Type      string
	UpdatedBy sql.NullInt64
}

// UpsertSetting inserts or replaces a setting value, keeping its declared type.
func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, type, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			type = excluded.type,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by`,
		arg.Key, arg.Value, arg.Type, time.Now(), arg.UpdatedBy)
	return err
}

// DeleteSetting removes a setting, returning the number of rows deleted.
func (q *Queries) DeleteSetting(ctx context.Context, key string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
