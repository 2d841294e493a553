// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/util"
)

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func categoryToResponse(c model.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func tagToResponse(t model.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		CreatedAt: t.CreatedAt,
	}
}

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateCategoryRequest represents the request body for updating a category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
}

// resolveTaxonomySlug derives a slug from the request or name and checks
// uniqueness through the supplied count query.
func resolveTaxonomySlug(ctx context.Context, requested, name string, excludeID int64,
	countBySlug func(context.Context, string, int64) (int64, error)) (string, string) {

	slug := requested
	if slug == "" {
		slug = util.Slugify(name)
	}
	if !util.IsValidSlug(slug) {
		return "", "Invalid slug"
	}
	n, err := countBySlug(ctx, slug, excludeID)
	if err != nil {
		return "", "Failed to validate slug"
	}
	if n > 0 {
		return "", "Slug is already in use"
	}
	return slug, ""
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queries.ListCategories(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list categories")
		return
	}
	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, categoryToResponse(c))
	}
	WriteSuccess(w, responses, nil)
}

// GetCategory handles GET /api/v1/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}
	category, err := h.queries.GetCategoryByID(r.Context(), id)
	if !requireEntity(w, err, "Category") {
		return
	}
	WriteSuccess(w, categoryToResponse(category), nil)
}

// CreateCategory handles POST /api/v1/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCategoryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	slug, msg := resolveTaxonomySlug(ctx, req.Slug, req.Name, 0, h.queries.CountCategoriesBySlug)
	if msg != "" {
		WriteValidationError(w, map[string]string{"slug": msg})
		return
	}

	category, err := h.queries.CreateCategory(ctx, store.CreateCategoryParams{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create category")
		return
	}
	WriteCreated(w, categoryToResponse(category))
}

// UpdateCategory handles PUT /api/v1/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}
	existing, err := h.queries.GetCategoryByID(ctx, id)
	if !requireEntity(w, err, "Category") {
		return
	}

	var req UpdateCategoryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateCategoryParams{
		ID:          existing.ID,
		Name:        existing.Name,
		Slug:        existing.Slug,
		Description: existing.Description,
		UpdatedAt:   time.Now(),
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		params.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Slug != nil && *req.Slug != existing.Slug {
		slug, msg := resolveTaxonomySlug(ctx, *req.Slug, params.Name, existing.ID, h.queries.CountCategoriesBySlug)
		if msg != "" {
			WriteValidationError(w, map[string]string{"slug": msg})
			return
		}
		params.Slug = slug
	}

	if err := h.queries.UpdateCategory(ctx, params); err != nil {
		WriteInternalError(w, "Failed to update category")
		return
	}
	category, err := h.queries.GetCategoryByID(ctx, existing.ID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve category")
		return
	}
	WriteSuccess(w, categoryToResponse(category), nil)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}
	n, err := h.queries.DeleteCategory(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "Failed to delete category")
		return
	}
	if n == 0 {
		WriteNotFound(w, "Category not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTagRequest represents the request body for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// UpdateTagRequest represents the request body for updating a tag.
type UpdateTagRequest struct {
	Name *string `json:"name,omitempty"`
	Slug *string `json:"slug,omitempty"`
}

// ListTags handles GET /api/v1/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.queries.ListTags(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list tags")
		return
	}
	responses := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		responses = append(responses, tagToResponse(t))
	}
	WriteSuccess(w, responses, nil)
}

// GetTag handles GET /api/v1/tags/{id}.
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid tag ID", nil)
		return
	}
	tag, err := h.queries.GetTagByID(r.Context(), id)
	if !requireEntity(w, err, "Tag") {
		return
	}
	WriteSuccess(w, tagToResponse(tag), nil)
}

// CreateTag handles POST /api/v1/tags.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTagRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	slug, msg := resolveTaxonomySlug(ctx, req.Slug, req.Name, 0, h.queries.CountTagsBySlug)
	if msg != "" {
		WriteValidationError(w, map[string]string{"slug": msg})
		return
	}

	tag, err := h.queries.CreateTag(ctx, store.CreateTagParams{Name: req.Name, Slug: slug})
	if err != nil {
		WriteInternalError(w, "Failed to create tag")
		return
	}
	WriteCreated(w, tagToResponse(tag))
}

// UpdateTag handles PUT /api/v1/tags/{id}.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid tag ID", nil)
		return
	}
	existing, err := h.queries.GetTagByID(ctx, id)
	if !requireEntity(w, err, "Tag") {
		return
	}

	var req UpdateTagRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateTagParams{
		ID:   existing.ID,
		Name: existing.Name,
		Slug: existing.Slug,
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		params.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil && *req.Slug != existing.Slug {
		slug, msg := resolveTaxonomySlug(ctx, *req.Slug, params.Name, existing.ID, h.queries.CountTagsBySlug)
		if msg != "" {
			WriteValidationError(w, map[string]string{"slug": msg})
			return
		}
		params.Slug = slug
	}

	if err := h.queries.UpdateTag(ctx, params); err != nil {
		WriteInternalError(w, "Failed to update tag")
		return
	}
	tag, err := h.queries.GetTagByID(ctx, existing.ID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve tag")
		return
	}
	WriteSuccess(w, tagToResponse(tag), nil)
}

// DeleteTag handles DELETE /api/v1/tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid tag ID", nil)
		return
	}
	n, err := h.queries.DeleteTag(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "Failed to delete tag")
		return
	}
	if n == 0 {
		WriteNotFound(w, "Tag not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
