// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/testutil"
)

func TestPublishDuePosts(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	author, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email:        "author@example.com",
		Username:     "author",
		PasswordHash: "x",
		Role:         model.RoleEditor,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	due, err := queries.CreatePost(ctx, store.CreatePostParams{
		Title:       "Due",
		Slug:        "due",
		Status:      model.PostStatusScheduled,
		AuthorID:    author.ID,
		ScheduledAt: sql.NullTime{Time: past, Valid: true},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	notDue, err := queries.CreatePost(ctx, store.CreatePostParams{
		Title:       "Not due",
		Slug:        "not-due",
		Status:      model.PostStatusScheduled,
		AuthorID:    author.ID,
		ScheduledAt: sql.NullTime{Time: future, Valid: true},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	s := New(db, testutil.TestLogger())
	if err := s.publishDuePosts(); err != nil {
		t.Fatalf("publishDuePosts: %v", err)
	}

	got, err := queries.GetPostByID(ctx, due.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if got.Status != model.PostStatusPublished {
		t.Errorf("due post status = %q, want %q", got.Status, model.PostStatusPublished)
	}
	if !got.PublishedAt.Valid {
		t.Error("due post has no published_at")
	}

	got, err = queries.GetPostByID(ctx, notDue.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if got.Status != model.PostStatusScheduled {
		t.Errorf("future post status = %q, want untouched %q", got.Status, model.PostStatusScheduled)
	}
}
