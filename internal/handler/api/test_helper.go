// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/bloghost/internal/auth"
	"github.com/olegiv/bloghost/internal/cache"
	"github.com/olegiv/bloghost/internal/config"
	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/session"
	"github.com/olegiv/bloghost/internal/settings"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/testutil"
)

const testPassword = "Str0ngP@ss!"

// testConfig returns a config suitable for handler tests: cookie mode on,
// no external base URL.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:        "0123456789abcdef0123456789abcdef",
		TokenTTL:         time.Hour,
		RememberTokenTTL: 720 * time.Hour,
		CookieMode:       true,
		CookieName:       "bloghost_session",
		CSRFCookieName:   "bloghost_csrf",
		CSRFHeaderName:   "X-CSRF-Token",
		CookieSameSite:   "lax",
		UploadsDir:       t.TempDir(),
		MaxFailedLogins:  5,
		LoginWindow:      15 * time.Minute,
		LoginLockout:     15 * time.Minute,
	}
}

// testSetup creates a test database and a fully wired API handler.
func testSetup(t *testing.T) (*sql.DB, *Handler) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	cfg := testConfig(t)
	c, err := cache.New(cache.Config{})
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	h := NewHandler(Deps{
		DB:        db,
		Config:    cfg,
		Transport: session.NewTransport(cfg),
		Issuer:    auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.RememberTokenTTL),
		Throttle: auth.NewThrottle(c, auth.ThrottleConfig{
			MaxAttempts: cfg.MaxFailedLogins,
			Window:      cfg.LoginWindow,
			Lockout:     cfg.LoginLockout,
		}),
		Settings: settings.NewResolver(db, c, time.Minute),
		Cache:    c,
	})
	return db, h
}

// createTestUser inserts a user with the shared test password.
func createTestUser(t *testing.T, db *sql.DB, email, username, role string) model.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

// createTestPost inserts a post owned by authorID.
func createTestPost(t *testing.T, db *sql.DB, authorID int64, title, slug, status string) model.Post {
	t.Helper()

	params := store.CreatePostParams{
		Title:    title,
		Slug:     slug,
		Body:     "Test body for " + title,
		Status:   status,
		AuthorID: authorID,
	}
	if status == model.PostStatusPublished {
		params.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	post, err := store.New(db).CreatePost(context.Background(), params)
	if err != nil {
		t.Fatalf("creating test post: %v", err)
	}
	return post
}

// seedComment inserts a comment directly through the store layer.
func seedComment(t *testing.T, queries *store.Queries, postID int64, body, status string) model.Comment {
	t.Helper()

	comment, err := queries.CreateComment(context.Background(), store.CreateCommentParams{
		PostID:      postID,
		AuthorName:  "Reader",
		AuthorEmail: "reader@example.com",
		Body:        body,
		Status:      status,
		IPAddress:   "192.0.2.1",
	})
	if err != nil {
		t.Fatalf("seeding comment: %v", err)
	}
	return comment
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestAs attaches an authenticated principal to the request context, the
// way RequireAuth does after verifying a token.
func requestAs(r *http.Request, user model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// newJSONRequest creates an HTTP request with JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newGetRequest creates an HTTP GET request with optional URL params.
func newGetRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T `json:"data"`
}

// listResponse is a generic wrapper for API list responses with data and meta.
type listResponse[T any] struct {
	Data []T   `json:"data"`
	Meta *Meta `json:"meta"`
}

// unmarshalData unmarshals a JSON response body into the specified type.
func unmarshalData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp dataResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data
}

// unmarshalList unmarshals a JSON list response body into the specified type.
func unmarshalList[T any](t *testing.T, w *httptest.ResponseRecorder) ([]T, *Meta) {
	t.Helper()
	var resp listResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data, resp.Meta
}

// executeHandler executes a handler and returns the response recorder.
func executeHandler(t *testing.T, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
