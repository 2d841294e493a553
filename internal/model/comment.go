// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Comment statuses.
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusSpam     = "spam"
)

// Comment represents a reader comment on a post. AuthorName/AuthorEmail
// identify anonymous commenters; UserID is set for authenticated ones.
type Comment struct {
	ID          int64
	PostID      int64
	UserID      sql.NullInt64
	AuthorName  string
	AuthorEmail string
	Body        string
	Status      string
	IPAddress   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
