// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/store"
)

func TestCreateCommentAnonymousIsPendingAndSanitized(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)
	createTestPost(t, db, editor.ID, "Public", "public", model.PostStatusPublished)

	body := `{"author_name":"Reader","author_email":"reader@example.com",` +
		`"body":"Nice post! <script>alert(1)</script>"}`
	req := newJSONRequest(t, http.MethodPost, "/api/v1/posts/1/comments", body,
		map[string]string{"id": "1"})
	w := executeHandler(t, h.CreateComment, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	comment := unmarshalData[CommentResponse](t, w)
	if strings.Contains(comment.Body, "<script>") {
		t.Errorf("script tag survived sanitization: %q", comment.Body)
	}
	if comment.AuthorEmail != "" || comment.Status != "" {
		t.Errorf("moderation fields leaked to anonymous response: %+v", comment)
	}

	stored, err := store.New(db).GetCommentByID(context.Background(), comment.ID)
	if err != nil {
		t.Fatalf("loading stored comment: %v", err)
	}
	if stored.Status != model.CommentStatusPending {
		t.Errorf("expected pending status, got %q", stored.Status)
	}
}

func TestCreateCommentStaffIsAutoApproved(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)
	createTestPost(t, db, editor.ID, "Public", "public", model.PostStatusPublished)

	req := requestAs(newJSONRequest(t, http.MethodPost, "/api/v1/posts/1/comments",
		`{"body":"Editor note"}`, map[string]string{"id": "1"}), editor)
	w := executeHandler(t, h.CreateComment, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	comment := unmarshalData[CommentResponse](t, w)
	stored, err := store.New(db).GetCommentByID(context.Background(), comment.ID)
	if err != nil {
		t.Fatalf("loading stored comment: %v", err)
	}
	if stored.Status != model.CommentStatusApproved {
		t.Errorf("expected staff comment approved, got %q", stored.Status)
	}
}

func TestCreateCommentRespectsCommentsEnabledSetting(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)
	createTestPost(t, db, editor.ID, "Public", "public", model.PostStatusPublished)

	if _, err := db.Exec(
		`INSERT INTO settings (key, value, type, updated_at) VALUES ('comments_enabled', 'false', 'bool', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("disabling comments: %v", err)
	}

	body := `{"author_name":"Reader","author_email":"reader@example.com","body":"Hi"}`
	req := newJSONRequest(t, http.MethodPost, "/api/v1/posts/1/comments", body,
		map[string]string{"id": "1"})
	w := executeHandler(t, h.CreateComment, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when comments disabled, got %d", w.Code)
	}
}

func TestCreateCommentRejectedOnDraftPost(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)
	createTestPost(t, db, editor.ID, "Secret", "secret", model.PostStatusDraft)

	body := `{"author_name":"Reader","author_email":"reader@example.com","body":"Hi"}`
	req := newJSONRequest(t, http.MethodPost, "/api/v1/posts/1/comments", body,
		map[string]string{"id": "1"})
	w := executeHandler(t, h.CreateComment, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for draft post, got %d", w.Code)
	}
}

func TestListPostCommentsAnonymousSeesApprovedOnly(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)
	createTestPost(t, db, editor.ID, "Public", "public", model.PostStatusPublished)

	queries := store.New(db)
	seedComment(t, queries, 1, "Approved one", model.CommentStatusApproved)
	seedComment(t, queries, 1, "Pending one", model.CommentStatusPending)

	w := executeHandler(t, h.ListPostComments,
		newGetRequest(t, "/api/v1/posts/1/comments", map[string]string{"id": "1"}))
	comments, _ := unmarshalList[CommentResponse](t, w)
	if len(comments) != 1 || comments[0].Body != "Approved one" {
		t.Fatalf("anonymous caller should see only approved comments, got %+v", comments)
	}

	req := requestAs(newGetRequest(t, "/api/v1/posts/1/comments", map[string]string{"id": "1"}), editor)
	w = executeHandler(t, h.ListPostComments, req)
	comments, _ = unmarshalList[CommentResponse](t, w)
	if len(comments) != 2 {
		t.Fatalf("staff should see all comments, got %d", len(comments))
	}
	if comments[0].Status == "" {
		t.Error("staff listing should include moderation fields")
	}
}

func TestModerateComment(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)
	createTestPost(t, db, editor.ID, "Public", "public", model.PostStatusPublished)
	seedComment(t, store.New(db), 1, "Spammy", model.CommentStatusPending)

	req := requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/comments/1",
		`{"status":"spam"}`, map[string]string{"id": "1"}), editor)
	w := executeHandler(t, h.ModerateComment, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	comment := unmarshalData[CommentResponse](t, w)
	if comment.Status != model.CommentStatusSpam {
		t.Errorf("expected spam status, got %q", comment.Status)
	}

	req = requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/comments/1",
		`{"status":"nonsense"}`, map[string]string{"id": "1"}), editor)
	w = executeHandler(t, h.ModerateComment, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d", w.Code)
	}
}

func TestListCommentQueueDefaultsToPending(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)
	createTestPost(t, db, editor.ID, "Public", "public", model.PostStatusPublished)

	queries := store.New(db)
	seedComment(t, queries, 1, "Pending", model.CommentStatusPending)
	seedComment(t, queries, 1, "Approved", model.CommentStatusApproved)

	req := requestAs(newGetRequest(t, "/api/v1/comments", nil), editor)
	w := executeHandler(t, h.ListCommentQueue, req)
	comments, _ := unmarshalList[CommentResponse](t, w)
	if len(comments) != 1 || comments[0].Body != "Pending" {
		t.Fatalf("expected pending queue, got %+v", comments)
	}
}
