// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/render"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/util"
)

// maxCommentLength bounds the sanitized comment body.
const maxCommentLength = 10000

// CommentResponse represents a comment in API responses. AuthorEmail and
// IPAddress only appear for moderators.
type CommentResponse struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	UserID      *int64    `json:"user_id,omitempty"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email,omitempty"`
	Body        string    `json:"body"`
	Status      string    `json:"status,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func commentToResponse(c model.Comment, moderator bool) CommentResponse {
	resp := CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
	if c.UserID.Valid {
		resp.UserID = &c.UserID.Int64
	}
	if moderator {
		resp.AuthorEmail = c.AuthorEmail
		resp.Status = c.Status
		resp.IPAddress = c.IPAddress
	}
	return resp
}

// CreateCommentRequest represents the request body for creating a comment.
type CreateCommentRequest struct {
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
	Body        string `json:"body"`
}

// CreateComment handles POST /api/v1/posts/{id}/comments. Public, but
// only on published posts and only while commenting is enabled.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.settings.Bool(ctx, model.SettingKeyCommentsEnabled, true) {
		WriteForbidden(w, "Comments are disabled")
		return
	}

	postID, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}
	post, err := h.queries.GetPostByID(ctx, postID)
	if !requireEntity(w, err, "Post") {
		return
	}
	if post.Status != model.PostStatusPublished {
		WriteNotFound(w, "Post not found")
		return
	}

	var req CreateCommentRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	body := strings.TrimSpace(render.CommentText(req.Body))
	if body == "" {
		WriteValidationError(w, map[string]string{"body": "Comment body is required"})
		return
	}
	if len(body) > maxCommentLength {
		WriteValidationError(w, map[string]string{"body": "Comment is too long"})
		return
	}

	params := store.CreateCommentParams{
		PostID:    post.ID,
		Body:      body,
		Status:    model.CommentStatusPending,
		IPAddress: util.ClientIP(r),
	}

	if user := middleware.GetUser(r); user != nil {
		params.UserID = sql.NullInt64{Int64: user.ID, Valid: true}
		params.AuthorName = user.DisplayName()
		params.AuthorEmail = user.Email
		// Staff comments skip the moderation queue.
		params.Status = model.CommentStatusApproved
	} else {
		params.AuthorName = strings.TrimSpace(req.AuthorName)
		params.AuthorEmail = strings.TrimSpace(strings.ToLower(req.AuthorEmail))
		if params.AuthorName == "" {
			WriteValidationError(w, map[string]string{"author_name": "Name is required"})
			return
		}
		if params.AuthorEmail == "" || !strings.Contains(params.AuthorEmail, "@") {
			WriteValidationError(w, map[string]string{"author_email": "A valid email address is required"})
			return
		}
	}

	comment, err := h.queries.CreateComment(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to create comment")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryComment,
		"comment created on post "+post.Slug, nil, params.IPAddress, nil)

	WriteCreated(w, commentToResponse(comment, false))
}

// ListPostComments handles GET /api/v1/posts/{id}/comments. Anonymous
// callers only see approved comments.
func (h *Handler) ListPostComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postID, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}
	if _, err := h.queries.GetPostByID(ctx, postID); !requireEntity(w, err, "Post") {
		return
	}

	moderator := middleware.GetUser(r) != nil
	params := store.ListCommentsByPostParams{PostID: postID}
	if moderator {
		params.Status = r.URL.Query().Get("status")
	} else {
		params.Status = model.CommentStatusApproved
	}

	comments, err := h.queries.ListCommentsByPost(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list comments")
		return
	}

	responses := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, commentToResponse(c, moderator))
	}
	WriteSuccess(w, responses, nil)
}

// ListCommentQueue handles GET /api/v1/comments. Moderation view across
// all posts, defaulting to the pending queue.
func (h *Handler) ListCommentQueue(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.CommentStatusPending
	}

	comments, err := h.queries.ListCommentsByStatus(r.Context(), status)
	if err != nil {
		WriteInternalError(w, "Failed to list comments")
		return
	}

	responses := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, commentToResponse(c, true))
	}
	WriteSuccess(w, responses, nil)
}

// ModerateCommentRequest represents the request body for moderating a comment.
type ModerateCommentRequest struct {
	Status string `json:"status"`
}

// ModerateComment handles PUT /api/v1/comments/{id}.
func (h *Handler) ModerateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid comment ID", nil)
		return
	}
	if _, err := h.queries.GetCommentByID(ctx, id); !requireEntity(w, err, "Comment") {
		return
	}

	var req ModerateCommentRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	switch req.Status {
	case model.CommentStatusPending, model.CommentStatusApproved, model.CommentStatusSpam:
	default:
		WriteValidationError(w, map[string]string{"status": "Unknown comment status"})
		return
	}

	if err := h.queries.UpdateCommentStatus(ctx, store.UpdateCommentStatusParams{
		ID:        id,
		Status:    req.Status,
		UpdatedAt: time.Now(),
	}); err != nil {
		WriteInternalError(w, "Failed to update comment")
		return
	}

	comment, err := h.queries.GetCommentByID(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve comment")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryComment,
		"comment "+req.Status, &user.ID, util.ClientIP(r), nil)

	WriteSuccess(w, commentToResponse(comment, true), nil)
}

// DeleteComment handles DELETE /api/v1/comments/{id}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid comment ID", nil)
		return
	}
	n, err := h.queries.DeleteComment(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "Failed to delete comment")
		return
	}
	if n == 0 {
		WriteNotFound(w, "Comment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
