// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, CSRF protection and rate limiting.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/olegiv/bloghost/internal/auth"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/session"
	"github.com/olegiv/bloghost/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key for the authenticated principal.
const ContextKeyUser ContextKey = "user"

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// resolvePrincipal extracts and verifies the request's token and loads the
// user record. Returns nil without writing anything when the request carries
// no valid credentials; required decides whether that is an error.
func resolvePrincipal(w http.ResponseWriter, r *http.Request, transport *session.Transport,
	issuer *auth.TokenIssuer, queries *store.Queries, required bool) (*model.User, bool) {

	token, found := transport.Extract(r)
	if !found {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return nil, true
		}
		return nil, false
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
			return nil, true
		}
		return nil, false
	}

	user, err := queries.GetUserByID(r.Context(), claims.UserID())
	if err != nil {
		if required {
			if errors.Is(err, sql.ErrNoRows) {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Unknown principal", nil)
			} else {
				slog.Error("loading principal", "error", err, "user_id", claims.UserID())
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to load principal", nil)
			}
			return nil, true
		}
		return nil, false
	}

	if !user.IsActive {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Account is disabled", nil)
			return nil, true
		}
		return nil, false
	}

	return &user, false
}

// RequireAuth creates middleware that requires a valid session token and
// loads the principal into the request context. Failure is always an
// Unauthorized outcome; role checks happen later in RequireRoles.
func RequireAuth(transport *session.Transport, issuer *auth.TokenIssuer, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, errorWritten := resolvePrincipal(w, r, transport, issuer, queries, true)
			if errorWritten {
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth creates middleware that loads the principal into context when
// valid credentials are present, and passes the request through untouched
// otherwise.
func OptionalAuth(transport *session.Transport, issuer *auth.TokenIssuer, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := resolvePrincipal(w, r, transport, issuer, queries, false)
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles creates middleware that allows only principals whose role is
// in the given allow-list. Must run after RequireAuth; a missing principal
// is Unauthorized, a role mismatch is Forbidden.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			if !slices.Contains(roles, user.Role) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient role", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the authenticated principal from the request context.
// Returns nil if the request is anonymous.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}
