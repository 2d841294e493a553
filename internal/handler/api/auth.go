// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/auth"
	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/util"
)

// UserResponse represents a user in API responses. The password hash is
// never included.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	AvatarPath  string     `json:"avatar_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func userToResponse(u model.User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Role:       u.Role,
		IsActive:   u.IsActive,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Bio:        u.Bio,
		AvatarPath: u.AvatarPath,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.LastLoginAt.Valid {
		resp.LastLoginAt = &u.LastLoginAt.Time
	}
	return resp
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Register handles POST /api/v1/auth/register.
// New accounts always start with the editor role; promotion to admin is a
// separate, admin-gated user update.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
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
		Role:         model.RoleEditor,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryUser, "user registered: "+user.Email,
		&user.ID, util.ClientIP(r), nil)

	WriteCreated(w, userToResponse(user))
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

// LoginResponse contains the session token and the authenticated user. In
// cookie mode CSRFToken echoes the value of the CSRF cookie so SPA clients
// can seed the header without reading cookies.
type LoginResponse struct {
	Token     string       `json:"token"`
	CSRFToken string       `json:"csrf_token,omitempty"`
	User      UserResponse `json:"user"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required", nil)
		return
	}

	// The lockout check runs before any password work so a blocked
	// identifier cannot be used to probe credentials.
	if blocked, retryAfter := h.throttle.IsBlocked(ctx, email); blocked {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		WriteError(w, http.StatusTooManyRequests, "rate_limited",
			"Too many failed login attempts, try again later", nil)
		return
	}

	user, err := h.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Login failed")
			return
		}
		// Unknown email burns an attempt too, and shares the bad
		// credentials response so accounts cannot be enumerated.
		h.throttle.RecordFailure(ctx, email)
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	if ok, err := auth.CheckPassword(req.Password, user.PasswordHash); err != nil || !ok {
		blocked, retryAfter := h.throttle.RecordFailure(ctx, email)
		h.events.Log(ctx, model.EventLevelWarning, model.EventCategoryAuth, "failed login for "+email,
			nil, util.ClientIP(r), nil)
		if blocked {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			WriteError(w, http.StatusTooManyRequests, "rate_limited",
				"Too many failed login attempts, try again later", nil)
			return
		}
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	if !user.IsActive {
		WriteUnauthorized(w, "Account is disabled")
		return
	}

	h.throttle.Reset(ctx, email)

	// Transparent rehash when the stored parameters are out of date.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			_ = h.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				ID:           user.ID,
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
			})
		}
	}

	token, err := h.issuer.Issue(&user, req.Remember)
	if err != nil {
		WriteInternalError(w, "Login failed")
		return
	}

	csrfToken, err := h.transport.Set(w, token, req.Remember)
	if err != nil {
		WriteInternalError(w, "Login failed")
		return
	}

	if err := h.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		ID:          user.ID,
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
	}); err != nil {
		slog.Warn("recording last login failed", "error", err, "user_id", user.ID)
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryAuth, "user logged in: "+user.Email,
		&user.ID, util.ClientIP(r), nil)

	WriteSuccess(w, LoginResponse{
		Token:     token,
		CSRFToken: csrfToken,
		User:      userToResponse(user),
	}, nil)
}

// Logout handles POST /api/v1/auth/logout. Clearing cookies is idempotent,
// so the endpoint succeeds whether or not a session was present.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		h.events.Log(r.Context(), model.EventLevelInfo, model.EventCategoryAuth, "user logged out: "+user.Email,
			&user.ID, util.ClientIP(r), nil)
	}
	h.transport.Clear(w)
	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, userToResponse(*user), nil)
}
