// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including User, Post, Comment, and settings structures.
package model

import (
	"database/sql"
	"time"
)

// User roles. An authenticated principal always carries one of these.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// ValidRole reports whether role is one of the enumerated user roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor
}

// User represents a blog user.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	IsActive     bool         `json:"is_active"`
	FirstName    string       `json:"first_name,omitempty"`
	LastName     string       `json:"last_name,omitempty"`
	Bio          string       `json:"bio,omitempty"`
	AvatarPath   string       `json:"avatar_path,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"-"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
