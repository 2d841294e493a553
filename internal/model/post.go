// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusScheduled = "scheduled"
)

// ValidPostStatus reports whether status is a known post status.
func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled:
		return true
	}
	return false
}

// Post represents a blog post. Body holds the raw markdown source;
// rendered HTML is produced at the API boundary and never stored.
type Post struct {
	ID              int64
	Title           string
	Slug            string
	Excerpt         string
	Body            string
	Status          string
	AuthorID        int64
	FeaturedImageID sql.NullInt64
	MetaTitle       string
	MetaDescription string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PublishedAt     sql.NullTime
	ScheduledAt     sql.NullTime
}

// Category represents a post category.
type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag represents a post tag.
type Tag struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
}
