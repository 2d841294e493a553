// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/auth"
	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/util"
)

// ListUsers handles GET /api/v1/users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list users")
		return
	}
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, userToResponse(u))
	}
	WriteSuccess(w, responses, nil)
}

// GetUser handles GET /api/v1/users/{id}. Admin only.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}
	user, err := h.queries.GetUserByID(r.Context(), id)
	if !requireEntity(w, err, "User") {
		return
	}
	WriteSuccess(w, userToResponse(user), nil)
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// CreateUser handles POST /api/v1/users. Admin only; unlike Register it
// can assign any role.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	var req CreateUserRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	fieldErrors := map[string]string{}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fieldErrors["email"] = "A valid email address is required"
	}
	if len(req.Username) < 3 {
		fieldErrors["username"] = "Username must be at least 3 characters"
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}
	if !model.ValidRole(req.Role) {
		fieldErrors["role"] = "Unknown role"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if n, err := h.queries.CountUsersByEmail(ctx, req.Email); err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	} else if n > 0 {
		WriteValidationError(w, map[string]string{"email": "Email is already registered"})
		return
	}
	if n, err := h.queries.CountUsersByUsername(ctx, req.Username); err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	} else if n > 0 {
		WriteValidationError(w, map[string]string{"username": "Username is already taken"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	}

	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryUser,
		"user created: "+user.Email, &actor.ID, util.ClientIP(r), nil)

	WriteCreated(w, userToResponse(user))
}

// UpdateUserRequest represents the request body for updating a user.
type UpdateUserRequest struct {
	Email      *string `json:"email,omitempty"`
	Username   *string `json:"username,omitempty"`
	Role       *string `json:"role,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	AvatarPath *string `json:"avatar_path,omitempty"`
}

// UpdateUser handles PUT /api/v1/users/{id}. Admin only. Role and active
// changes on the actor's own account are rejected so an admin cannot
// lock themselves out.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}
	existing, err := h.queries.GetUserByID(ctx, id)
	if !requireEntity(w, err, "User") {
		return
	}

	var req UpdateUserRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if actor.ID == existing.ID {
		if req.Role != nil && *req.Role != existing.Role {
			WriteValidationError(w, map[string]string{"role": "Cannot change your own role"})
			return
		}
		if req.IsActive != nil && !*req.IsActive {
			WriteValidationError(w, map[string]string{"is_active": "Cannot deactivate your own account"})
			return
		}
	}

	params := store.UpdateUserParams{
		ID:         existing.ID,
		Email:      existing.Email,
		Username:   existing.Username,
		Role:       existing.Role,
		IsActive:   existing.IsActive,
		FirstName:  existing.FirstName,
		LastName:   existing.LastName,
		Bio:        existing.Bio,
		AvatarPath: existing.AvatarPath,
		UpdatedAt:  time.Now(),
	}

	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email != existing.Email {
			if email == "" || !strings.Contains(email, "@") {
				WriteValidationError(w, map[string]string{"email": "A valid email address is required"})
				return
			}
			if n, err := h.queries.CountUsersByEmail(ctx, email); err != nil || n > 0 {
				WriteValidationError(w, map[string]string{"email": "Email is already registered"})
				return
			}
			params.Email = email
		}
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != existing.Username {
			if len(username) < 3 {
				WriteValidationError(w, map[string]string{"username": "Username must be at least 3 characters"})
				return
			}
			if n, err := h.queries.CountUsersByUsername(ctx, username); err != nil || n > 0 {
				WriteValidationError(w, map[string]string{"username": "Username is already taken"})
				return
			}
			params.Username = username
		}
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			WriteValidationError(w, map[string]string{"role": "Unknown role"})
			return
		}
		params.Role = *req.Role
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.FirstName != nil {
		params.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		params.LastName = *req.LastName
	}
	if req.Bio != nil {
		params.Bio = *req.Bio
	}
	if req.AvatarPath != nil {
		params.AvatarPath = *req.AvatarPath
	}

	if err := h.queries.UpdateUser(ctx, params); err != nil {
		WriteInternalError(w, "Failed to update user")
		return
	}
	user, err := h.queries.GetUserByID(ctx, existing.ID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve user")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryUser,
		"user updated: "+user.Email, &actor.ID, util.ClientIP(r), nil)

	WriteSuccess(w, userToResponse(user), nil)
}

// UpdateProfileRequest represents the request body for self-service
// profile updates. Identity, role and status fields are not included.
type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	AvatarPath *string `json:"avatar_path,omitempty"`
}

// UpdateProfile handles PUT /api/v1/auth/me.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	var req UpdateProfileRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateUserParams{
		ID:         actor.ID,
		Email:      actor.Email,
		Username:   actor.Username,
		Role:       actor.Role,
		IsActive:   actor.IsActive,
		FirstName:  actor.FirstName,
		LastName:   actor.LastName,
		Bio:        actor.Bio,
		AvatarPath: actor.AvatarPath,
		UpdatedAt:  time.Now(),
	}
	if req.FirstName != nil {
		params.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		params.LastName = *req.LastName
	}
	if req.Bio != nil {
		params.Bio = *req.Bio
	}
	if req.AvatarPath != nil {
		params.AvatarPath = *req.AvatarPath
	}

	if err := h.queries.UpdateUser(ctx, params); err != nil {
		WriteInternalError(w, "Failed to update profile")
		return
	}
	user, err := h.queries.GetUserByID(ctx, actor.ID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve profile")
		return
	}
	WriteSuccess(w, userToResponse(user), nil)
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles PUT /api/v1/auth/me/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	var req ChangePasswordRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if ok, err := auth.CheckPassword(req.CurrentPassword, actor.PasswordHash); err != nil || !ok {
		WriteUnauthorized(w, "Current password is incorrect")
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		WriteValidationError(w, map[string]string{"new_password": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		WriteInternalError(w, "Failed to change password")
		return
	}
	if err := h.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		ID:           actor.ID,
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
	}); err != nil {
		WriteInternalError(w, "Failed to change password")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryAuth,
		"password changed", &actor.ID, util.ClientIP(r), nil)

	WriteSuccess(w, map[string]string{"status": "password_changed"}, nil)
}

// DeleteUser handles DELETE /api/v1/users/{id}. Admin only; self-deletion
// is rejected.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}
	if id == actor.ID {
		WriteValidationError(w, map[string]string{"id": "Cannot delete your own account"})
		return
	}

	n, err := h.queries.DeleteUser(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to delete user")
		return
	}
	if n == 0 {
		WriteNotFound(w, "User not found")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryUser,
		"user deleted", &actor.ID, util.ClientIP(r), nil)

	w.WriteHeader(http.StatusNoContent)
}
