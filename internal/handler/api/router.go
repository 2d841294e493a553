// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
)

// Roles allowed per route group. Declared here, next to the routes, so
// the whole authorization surface is visible in one place.
var (
	rolesStaff = []string{model.RoleAdmin, model.RoleEditor}
	rolesAdmin = []string{model.RoleAdmin}
)

// Routes builds the /api/v1 router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	requireAuth := middleware.RequireAuth(h.transport, h.issuer, h.db)
	optionalAuth := middleware.OptionalAuth(h.transport, h.issuer, h.db)
	csrf := middleware.CSRF(h.transport)

	r.Get("/status", h.Status)
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	// Auth endpoints. Login and register are rate limited per IP; the
	// login lockout itself is separate and keyed by identifier.
	r.Group(func(r chi.Router) {
		r.Use(middleware.IPRateLimit(5, 10))
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
	})
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Post("/auth/logout", h.Logout)
	})
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, csrf)
		r.Get("/auth/me", h.Me)
		r.Put("/auth/me", h.UpdateProfile)
		r.Put("/auth/me/password", h.ChangePassword)
	})

	// Public reads. OptionalAuth lets staff see drafts and moderation
	// fields through the same endpoints.
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/posts", h.ListPosts)
		r.Get("/posts/{id}", h.GetPost)
		r.Get("/posts/{id}/comments", h.ListPostComments)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{id}", h.GetCategory)
		r.Get("/tags", h.ListTags)
		r.Get("/tags/{id}", h.GetTag)
		r.Get("/media", h.ListMedia)
		r.Get("/media/{id}", h.GetMedia)
	})

	// Public comment submission, tightly rate limited.
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth, csrf, middleware.IPRateLimit(1, 3))
		r.Post("/posts/{id}/comments", h.CreateComment)
	})

	// Staff writes.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, middleware.RequireRoles(rolesStaff...), csrf)
		r.Post("/posts", h.CreatePost)
		r.Put("/posts/{id}", h.UpdatePost)
		r.Delete("/posts/{id}", h.DeletePost)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Post("/tags", h.CreateTag)
		r.Put("/tags/{id}", h.UpdateTag)
		r.Get("/settings", h.ListSettings)
		r.Get("/comments", h.ListCommentQueue)
		r.Put("/comments/{id}", h.ModerateComment)
		r.Delete("/comments/{id}", h.DeleteComment)
		r.Post("/media", h.UploadMedia)
		r.Delete("/media/{id}", h.DeleteMedia)
	})

	// Admin-only surface.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, middleware.RequireRoles(rolesAdmin...), csrf)
		r.Delete("/categories/{id}", h.DeleteCategory)
		r.Delete("/tags/{id}", h.DeleteTag)
		r.Put("/settings/{key}", h.UpdateSetting)
		r.Get("/users", h.ListUsers)
		r.Post("/users", h.CreateUser)
		r.Get("/users/{id}", h.GetUser)
		r.Put("/users/{id}", h.UpdateUser)
		r.Delete("/users/{id}", h.DeleteUser)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}
