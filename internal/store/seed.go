// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/bloghost/internal/auth"
	"github.com/olegiv/bloghost/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "Changeme-1"
)

// Seed creates initial data in the database: the default admin account and
// any standard settings that are missing. It is safe to run more than once.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries); err != nil {
		return err
	}
	return seedSettings(ctx, queries)
}

func seedAdmin(ctx context.Context, q *Queries) error {
	_, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		Username:     DefaultAdminUsername,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)
	return nil
}

func seedSettings(ctx context.Context, q *Queries) error {
	for _, def := range model.StandardSettings {
		_, err := q.GetSetting(ctx, def.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking setting %q: %w", def.Key, err)
		}
		if err := q.UpsertSetting(ctx, UpsertSettingParams{
			Key:   def.Key,
			Value: def.DefaultValue,
			Type:  def.Type,
		}); err != nil {
			return fmt.Errorf("seeding setting %q: %w", def.Key, err)
		}
	}
	return nil
}
