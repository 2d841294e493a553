// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/render"
	"github.com/olegiv/bloghost/internal/settings"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/util"
)

// PostResponse represents a post in API responses. BodyHTML is rendered
// from the markdown source at the boundary and never stored.
type PostResponse struct {
	ID              int64              `json:"id"`
	Title           string             `json:"title"`
	Slug            string             `json:"slug"`
	Excerpt         string             `json:"excerpt,omitempty"`
	Body            string             `json:"body"`
	BodyHTML        string             `json:"body_html,omitempty"`
	Status          string             `json:"status"`
	AuthorID        int64              `json:"author_id"`
	FeaturedImage   string             `json:"featured_image,omitempty"`
	MetaTitle       string             `json:"meta_title,omitempty"`
	MetaDescription string             `json:"meta_description,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	PublishedAt     *time.Time         `json:"published_at,omitempty"`
	ScheduledAt     *time.Time         `json:"scheduled_at,omitempty"`
	Author          *AuthorResponse    `json:"author,omitempty"`
	Categories      []CategoryResponse `json:"categories,omitempty"`
	Tags            []TagResponse      `json:"tags,omitempty"`
}

// AuthorResponse is the public subset of a user embedded in post responses.
type AuthorResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title           string  `json:"title"`
	Slug            string  `json:"slug,omitempty"`
	Excerpt         string  `json:"excerpt,omitempty"`
	Body            string  `json:"body"`
	Status          string  `json:"status,omitempty"`
	FeaturedImageID *int64  `json:"featured_image_id,omitempty"`
	MetaTitle       string  `json:"meta_title,omitempty"`
	MetaDescription string  `json:"meta_description,omitempty"`
	ScheduledAt     *string `json:"scheduled_at,omitempty"`
	CategoryIDs     []int64 `json:"category_ids,omitempty"`
	TagIDs          []int64 `json:"tag_ids,omitempty"`
}

// UpdatePostRequest represents the request body for updating a post.
// Pointer fields distinguish "not provided" from zero values.
type UpdatePostRequest struct {
	Title           *string `json:"title,omitempty"`
	Slug            *string `json:"slug,omitempty"`
	Excerpt         *string `json:"excerpt,omitempty"`
	Body            *string `json:"body,omitempty"`
	Status          *string `json:"status,omitempty"`
	FeaturedImageID *int64  `json:"featured_image_id,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	ScheduledAt     *string `json:"scheduled_at,omitempty"`
	CategoryIDs     []int64 `json:"category_ids,omitempty"`
	TagIDs          []int64 `json:"tag_ids,omitempty"`
}

// postToResponse converts a model.Post to PostResponse, rendering the
// markdown body when renderBody is true.
func (h *Handler) postToResponse(ctx context.Context, p model.Post, renderBody bool) PostResponse {
	resp := PostResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Excerpt:         p.Excerpt,
		Body:            p.Body,
		Status:          p.Status,
		AuthorID:        p.AuthorID,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	if p.ScheduledAt.Valid {
		resp.ScheduledAt = &p.ScheduledAt.Time
	}
	if renderBody {
		if html, err := render.Markdown(p.Body); err == nil {
			resp.BodyHTML = html
		}
	}
	if p.FeaturedImageID.Valid {
		if m, err := h.queries.GetMediaByID(ctx, p.FeaturedImageID.Int64); err == nil {
			resp.FeaturedImage = settings.AssetURL(
				"/uploads/originals/"+m.UUID+"/"+m.Filename, h.cfg.APIBaseURL)
		}
	}
	return resp
}

// populatePostIncludes expands the requested related entities.
func (h *Handler) populatePostIncludes(ctx context.Context, resp *PostResponse, p model.Post, include string) {
	for _, inc := range strings.Split(include, ",") {
		switch strings.TrimSpace(inc) {
		case "author":
			if u, err := h.queries.GetUserByID(ctx, p.AuthorID); err == nil {
				resp.Author = &AuthorResponse{
					ID:       u.ID,
					Username: u.Username,
					Name:     u.DisplayName(),
				}
			}
		case "categories":
			if cats, err := h.queries.GetPostCategories(ctx, p.ID); err == nil {
				resp.Categories = make([]CategoryResponse, 0, len(cats))
				for _, c := range cats {
					resp.Categories = append(resp.Categories, categoryToResponse(c))
				}
			}
		case "tags":
			if tags, err := h.queries.GetPostTags(ctx, p.ID); err == nil {
				resp.Tags = make([]TagResponse, 0, len(tags))
				for _, t := range tags {
					resp.Tags = append(resp.Tags, tagToResponse(t))
				}
			}
		}
	}
}

// ListPosts handles GET /api/v1/posts. Anonymous callers only ever see
// published posts regardless of the status filter.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page := parsePageParam(r)
	perPage := parsePerPageParam(r, 20, 100)

	params := store.ListPostsParams{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	}
	if s := q.Get("category"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid category ID", nil)
			return
		}
		params.CategoryID = id
	}
	if s := q.Get("tag"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid tag ID", nil)
			return
		}
		params.TagID = id
	}

	if middleware.GetUser(r) == nil {
		params.Status = model.PostStatusPublished
	} else if params.Status != "" && !model.ValidPostStatus(params.Status) {
		WriteBadRequest(w, "Invalid status filter", nil)
		return
	}

	posts, err := h.queries.ListPosts(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list posts")
		return
	}
	total, err := h.queries.CountPosts(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list posts")
		return
	}

	include := q.Get("include")
	responses := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		// Listings skip body rendering; the detail endpoint renders.
		resp := h.postToResponse(ctx, p, false)
		if include != "" {
			h.populatePostIncludes(ctx, &resp, p, include)
		}
		responses = append(responses, resp)
	}

	WriteSuccess(w, responses, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pageCount(total, perPage),
	})
}

// GetPost handles GET /api/v1/posts/{id}. The id segment also accepts a
// slug for public permalink lookups.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var post model.Post
	param := chi.URLParam(r, "id")
	if id, err := strconv.ParseInt(param, 10, 64); err == nil {
		post, err = h.queries.GetPostByID(ctx, id)
		if !requireEntity(w, err, "Post") {
			return
		}
	} else {
		var slugErr error
		post, slugErr = h.queries.GetPostBySlug(ctx, param)
		if !requireEntity(w, slugErr, "Post") {
			return
		}
	}

	if middleware.GetUser(r) == nil && post.Status != model.PostStatusPublished {
		WriteNotFound(w, "Post not found")
		return
	}

	resp := h.postToResponse(ctx, post, true)
	if include := r.URL.Query().Get("include"); include != "" {
		h.populatePostIncludes(ctx, &resp, post, include)
	}
	WriteSuccess(w, resp, nil)
}

// resolvePostSlug derives a unique slug from the request or title.
// excludeID skips the post itself when updating.
func (h *Handler) resolvePostSlug(ctx context.Context, requested, title string, excludeID int64) (string, error) {
	slug := requested
	if slug == "" {
		slug = util.Slugify(title)
	}
	if !util.IsValidSlug(slug) {
		return "", fmt.Errorf("invalid slug %q", slug)
	}
	n, err := h.queries.CountPostsBySlug(ctx, slug, excludeID)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return slug, nil
	}
	// Suffix until free. Collisions are rare enough that a linear probe
	// is fine.
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", slug, i)
		n, err := h.queries.CountPostsBySlug(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
	}
}

// parseScheduledAt parses an RFC 3339 schedule timestamp that must be in
// the future.
func parseScheduledAt(value string) (sql.NullTime, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return sql.NullTime{}, errors.New("scheduled_at must be RFC 3339")
	}
	if !t.After(time.Now()) {
		return sql.NullTime{}, errors.New("scheduled_at must be in the future")
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// CreatePost handles POST /api/v1/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	var req CreatePostRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		WriteValidationError(w, map[string]string{"title": "Title is required"})
		return
	}

	status := req.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	if !model.ValidPostStatus(status) {
		WriteValidationError(w, map[string]string{"status": "Unknown post status"})
		return
	}

	slug, err := h.resolvePostSlug(ctx, req.Slug, req.Title, 0)
	if err != nil {
		WriteValidationError(w, map[string]string{"slug": err.Error()})
		return
	}

	params := store.CreatePostParams{
		Title:           req.Title,
		Slug:            slug,
		Excerpt:         req.Excerpt,
		Body:            req.Body,
		Status:          status,
		AuthorID:        user.ID,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if req.FeaturedImageID != nil {
		params.FeaturedImageID = sql.NullInt64{Int64: *req.FeaturedImageID, Valid: true}
	}
	switch status {
	case model.PostStatusPublished:
		params.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	case model.PostStatusScheduled:
		if req.ScheduledAt == nil {
			WriteValidationError(w, map[string]string{"scheduled_at": "Required for scheduled posts"})
			return
		}
		scheduledAt, err := parseScheduledAt(*req.ScheduledAt)
		if err != nil {
			WriteValidationError(w, map[string]string{"scheduled_at": err.Error()})
			return
		}
		params.ScheduledAt = scheduledAt
	}

	post, err := h.queries.CreatePost(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to create post")
		return
	}

	if len(req.CategoryIDs) > 0 {
		if err := h.queries.SetPostCategories(ctx, post.ID, req.CategoryIDs); err != nil {
			WriteInternalError(w, "Failed to assign categories")
			return
		}
	}
	if len(req.TagIDs) > 0 {
		if err := h.queries.SetPostTags(ctx, post.ID, req.TagIDs); err != nil {
			WriteInternalError(w, "Failed to assign tags")
			return
		}
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryPost,
		"post created: "+post.Slug, &user.ID, util.ClientIP(r), nil)

	resp := h.postToResponse(ctx, post, true)
	h.populatePostIncludes(ctx, &resp, post, "categories,tags")
	WriteCreated(w, resp)
}

// UpdatePost handles PUT /api/v1/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	existing, err := h.queries.GetPostByID(ctx, id)
	if !requireEntity(w, err, "Post") {
		return
	}

	var req UpdatePostRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdatePostParams{
		ID:              existing.ID,
		Title:           existing.Title,
		Slug:            existing.Slug,
		Excerpt:         existing.Excerpt,
		Body:            existing.Body,
		Status:          existing.Status,
		FeaturedImageID: existing.FeaturedImageID,
		MetaTitle:       existing.MetaTitle,
		MetaDescription: existing.MetaDescription,
		UpdatedAt:       time.Now(),
		PublishedAt:     existing.PublishedAt,
		ScheduledAt:     existing.ScheduledAt,
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		params.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil && *req.Slug != existing.Slug {
		slug, err := h.resolvePostSlug(ctx, *req.Slug, params.Title, existing.ID)
		if err != nil {
			WriteValidationError(w, map[string]string{"slug": err.Error()})
			return
		}
		params.Slug = slug
	}
	if req.Excerpt != nil {
		params.Excerpt = *req.Excerpt
	}
	if req.Body != nil {
		params.Body = *req.Body
	}
	if req.MetaTitle != nil {
		params.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		params.MetaDescription = *req.MetaDescription
	}
	if req.FeaturedImageID != nil {
		if *req.FeaturedImageID == 0 {
			params.FeaturedImageID = sql.NullInt64{}
		} else {
			params.FeaturedImageID = sql.NullInt64{Int64: *req.FeaturedImageID, Valid: true}
		}
	}

	if req.Status != nil && *req.Status != existing.Status {
		if !model.ValidPostStatus(*req.Status) {
			WriteValidationError(w, map[string]string{"status": "Unknown post status"})
			return
		}
		params.Status = *req.Status
		switch *req.Status {
		case model.PostStatusPublished:
			if !existing.PublishedAt.Valid {
				params.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
			}
			params.ScheduledAt = sql.NullTime{}
		case model.PostStatusScheduled:
			if req.ScheduledAt == nil {
				WriteValidationError(w, map[string]string{"scheduled_at": "Required for scheduled posts"})
				return
			}
		case model.PostStatusDraft:
			params.ScheduledAt = sql.NullTime{}
		}
	}
	if req.ScheduledAt != nil {
		scheduledAt, err := parseScheduledAt(*req.ScheduledAt)
		if err != nil {
			WriteValidationError(w, map[string]string{"scheduled_at": err.Error()})
			return
		}
		params.ScheduledAt = scheduledAt
	}

	if err := h.queries.UpdatePost(ctx, params); err != nil {
		WriteInternalError(w, "Failed to update post")
		return
	}

	if req.CategoryIDs != nil {
		if err := h.queries.SetPostCategories(ctx, existing.ID, req.CategoryIDs); err != nil {
			WriteInternalError(w, "Failed to assign categories")
			return
		}
	}
	if req.TagIDs != nil {
		if err := h.queries.SetPostTags(ctx, existing.ID, req.TagIDs); err != nil {
			WriteInternalError(w, "Failed to assign tags")
			return
		}
	}

	post, err := h.queries.GetPostByID(ctx, existing.ID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve post")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryPost,
		"post updated: "+post.Slug, &user.ID, util.ClientIP(r), nil)

	resp := h.postToResponse(ctx, post, true)
	h.populatePostIncludes(ctx, &resp, post, "categories,tags")
	WriteSuccess(w, resp, nil)
}

// DeletePost handles DELETE /api/v1/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	post, err := h.queries.GetPostByID(ctx, id)
	if !requireEntity(w, err, "Post") {
		return
	}

	if _, err := h.queries.DeletePost(ctx, id); err != nil {
		WriteInternalError(w, "Failed to delete post")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryPost,
		"post deleted: "+post.Slug, &user.ID, util.ClientIP(r), nil)

	w.WriteHeader(http.StatusNoContent)
}
