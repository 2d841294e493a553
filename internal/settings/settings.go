// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package settings normalizes and serves site configuration stored as
// key/value rows, with duplicate-key merging and secret masking.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/cache"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/store"
)

// MaskedValue replaces secret setting values on the read path so they are
// never echoed to API clients.
const MaskedValue = "********"

// cacheKey is where the merged settings snapshot lives in the cache.
const cacheKey = "settings:all"

// NormalizeKey maps a free-form key spelling to its canonical form:
// trim, lowercase, collapse every run of non-alphanumeric characters
// to a single underscore, strip leading and trailing underscores.
// "Site Name!", "site__name" and "site-name" all normalize to "site_name".
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))

	var b strings.Builder
	b.Grow(len(key))
	pendingSep := false
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// IsCanonicalKey reports whether key is already in canonical form: only
// lowercase letters, digits, and underscores, and equal to its own
// normalized spelling.
func IsCanonicalKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return false
	}
	return key == NormalizeKey(key)
}

// Resolver serves merged settings with a read-through cache. Reads are
// frequent and writes rare, so the whole merged snapshot is cached as
// one entry and invalidated on any write.
type Resolver struct {
	queries *store.Queries
	cache   *cache.TypedCache[[]model.Setting]
}

// NewResolver creates a Resolver backed by the given database and cache.
func NewResolver(db *sql.DB, c cache.Cacher, ttl time.Duration) *Resolver {
	return &Resolver{
		queries: store.New(db),
		cache:   cache.NewTypedCache[[]model.Setting](c, ttl),
	}
}

// merge collapses rows whose keys normalize to the same logical key.
// A canonical-spelling row wins over a legacy spelling; among rows of
// equal canonicality the first non-empty value wins. The returned rows
// carry normalized keys.
func merge(rows []model.Setting) []model.Setting {
	type entry struct {
		setting   model.Setting
		canonical bool
	}
	order := make([]string, 0, len(rows))
	byKey := make(map[string]entry, len(rows))

	for _, row := range rows {
		norm := NormalizeKey(row.Key)
		if norm == "" {
			continue
		}
		canonical := IsCanonicalKey(row.Key)
		row.Key = norm

		cur, seen := byKey[norm]
		if !seen {
			order = append(order, norm)
			byKey[norm] = entry{setting: row, canonical: canonical}
			continue
		}
		switch {
		case canonical && !cur.canonical:
			byKey[norm] = entry{setting: row, canonical: true}
		case canonical == cur.canonical && cur.setting.Value == "" && row.Value != "":
			byKey[norm] = entry{setting: row, canonical: canonical}
		}
	}

	merged := make([]model.Setting, 0, len(order))
	for _, k := range order {
		merged = append(merged, byKey[k].setting)
	}
	return merged
}

// load returns the merged, unmasked settings snapshot, from cache when warm.
func (r *Resolver) load(ctx context.Context) ([]model.Setting, error) {
	snapshot, err := r.cache.GetOrSet(ctx, cacheKey, func() (*[]model.Setting, error) {
		rows, err := r.queries.ListSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing settings: %w", err)
		}
		merged := merge(rows)
		return &merged, nil
	})
	if err != nil {
		return nil, err
	}
	return *snapshot, nil
}

// All returns every merged setting with secret values masked. Standard
// settings missing from storage are included with their defaults.
func (r *Resolver) All(ctx context.Context) ([]model.Setting, error) {
	stored, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(stored))
	out := make([]model.Setting, 0, len(stored)+len(model.StandardSettings))
	for _, s := range stored {
		present[s.Key] = true
		if s.Key == model.SettingKeySMTPPassword && s.Value != "" {
			s.Value = MaskedValue
		}
		out = append(out, s)
	}
	for _, def := range model.StandardSettings {
		if !present[def.Key] {
			out = append(out, model.Setting{Key: def.Key, Value: def.DefaultValue, Type: def.Type})
		}
	}
	return out, nil
}

// get returns the merged, unmasked setting for a normalized key, falling
// back to the standard default when the row is absent.
func (r *Resolver) get(ctx context.Context, key string) (model.Setting, error) {
	norm := NormalizeKey(key)
	stored, err := r.load(ctx)
	if err != nil {
		return model.Setting{}, err
	}
	for _, s := range stored {
		if s.Key == norm {
			return s, nil
		}
	}
	for _, def := range model.StandardSettings {
		if def.Key == norm {
			return model.Setting{Key: def.Key, Value: def.DefaultValue, Type: def.Type}, nil
		}
	}
	return model.Setting{}, sql.ErrNoRows
}

// String returns a setting's value as a string, or fallback when unset.
func (r *Resolver) String(ctx context.Context, key, fallback string) string {
	s, err := r.get(ctx, key)
	if err != nil || s.Value == "" {
		return fallback
	}
	return s.Value
}

// Int returns a setting's value parsed as an integer, or fallback when
// unset or unparseable.
func (r *Resolver) Int(ctx context.Context, key string, fallback int) int {
	s, err := r.get(ctx, key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(s.Value))
	if err != nil {
		return fallback
	}
	return n
}

// Bool returns a setting's value parsed as a boolean, or fallback when
// unset or unparseable.
func (r *Resolver) Bool(ctx context.Context, key string, fallback bool) bool {
	s, err := r.get(ctx, key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s.Value))
	if err != nil {
		return fallback
	}
	return v
}

// JSON unmarshals a setting's value into dst.
func (r *Resolver) JSON(ctx context.Context, key string, dst any) error {
	s, err := r.get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(s.Value), dst)
}

// Update upserts a setting under its normalized key and invalidates the
// snapshot cache. When valueType is empty an existing row keeps its stored
// type tag; a brand new key defaults to the string type. The incoming
// masked placeholder is rejected so a round-tripped read can never
// overwrite a real secret.
func (r *Resolver) Update(ctx context.Context, key, value, valueType string, updatedBy int64) (model.Setting, error) {
	norm := NormalizeKey(key)
	if norm == "" {
		return model.Setting{}, fmt.Errorf("key %q normalizes to an empty string", key)
	}
	if norm == model.SettingKeySMTPPassword && value == MaskedValue {
		return model.Setting{}, errors.New("refusing to store the masked placeholder as a secret")
	}
	if valueType != "" && !model.ValidSettingType(valueType) {
		return model.Setting{}, fmt.Errorf("unknown setting type %q", valueType)
	}

	if valueType == "" {
		existing, err := r.queries.GetSetting(ctx, norm)
		switch {
		case err == nil:
			valueType = existing.Type
		case errors.Is(err, sql.ErrNoRows):
			valueType = model.SettingTypeString
		default:
			return model.Setting{}, fmt.Errorf("reading setting %q: %w", norm, err)
		}
	}

	err := r.queries.UpsertSetting(ctx, store.UpsertSettingParams{
		Key:       norm,
		Value:     value,
		Type:      valueType,
		UpdatedBy: sql.NullInt64{Int64: updatedBy, Valid: updatedBy != 0},
	})
	if err != nil {
		return model.Setting{}, fmt.Errorf("upserting setting %q: %w", norm, err)
	}

	// Drop the snapshot so the next read re-merges from storage.
	_ = r.cache.Delete(ctx, cacheKey)

	return r.queries.GetSetting(ctx, norm)
}
