// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session moves the auth token between client and server. Two
// transports exist: Authorization-header mode, where the client holds the
// raw token, and cookie mode, where the server issues an HttpOnly session
// cookie plus a readable CSRF cookie (double-submit pattern).
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/config"
)

// Transport issues, clears, and extracts session credentials according to
// the configured cookie policy. Set and Clear must build cookies from the
// same attribute set: a browser treats a cookie whose SameSite, Secure, or
// Domain differs as a different cookie and will not clear it.
type Transport struct {
	cookieMode     bool
	cookieName     string
	csrfCookieName string
	csrfHeaderName string
	domain         string
	sameSite       http.SameSite
	secure         bool
	rememberTTL    time.Duration
}

// NewTransport builds a Transport from the application configuration.
func NewTransport(cfg *config.Config) *Transport {
	return &Transport{
		cookieMode:     cfg.CookieMode,
		cookieName:     cfg.CookieName,
		csrfCookieName: cfg.CSRFCookieName,
		csrfHeaderName: cfg.CSRFHeaderName,
		domain:         cfg.CookieDomain,
		sameSite:       cfg.SameSite(),
		secure:         cfg.CookieSecure,
		rememberTTL:    cfg.RememberTokenTTL,
	}
}

// CookieMode reports whether cookie transport is active.
func (t *Transport) CookieMode() bool { return t.cookieMode }

// CSRFHeaderName returns the header state-changing requests must echo the
// CSRF cookie value in.
func (t *Transport) CSRFHeaderName() string { return t.csrfHeaderName }

// CSRFCookieName returns the name of the readable CSRF cookie.
func (t *Transport) CSRFCookieName() string { return t.csrfCookieName }

// SessionCookieName returns the name of the HttpOnly session cookie.
func (t *Transport) SessionCookieName() string { return t.cookieName }

// newCookie is the single place cookie attributes are assembled, so issued
// and cleared cookies always match.
func (t *Transport) newCookie(name, value string, httpOnly bool, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   t.domain,
		HttpOnly: httpOnly,
		SameSite: t.sameSite,
		Secure:   t.secure,
		MaxAge:   maxAge,
	}
}

// NewCSRFToken generates a random CSRF token.
func NewCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating CSRF token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Set issues the session cookie and a sibling CSRF cookie, returning the
// CSRF token value. With remember the cookies persist for the remember TTL;
// otherwise they are session cookies with no explicit max-age. A no-op in
// header mode.
func (t *Transport) Set(w http.ResponseWriter, token string, remember bool) (string, error) {
	if !t.cookieMode {
		return "", nil
	}

	csrfToken, err := NewCSRFToken()
	if err != nil {
		return "", err
	}

	maxAge := 0
	if remember {
		maxAge = int(t.rememberTTL.Seconds())
	}

	http.SetCookie(w, t.newCookie(t.cookieName, token, true, maxAge))
	http.SetCookie(w, t.newCookie(t.csrfCookieName, csrfToken, false, maxAge))
	return csrfToken, nil
}

// Clear overwrites both cookies with empty values and an expired lifetime,
// using the attribute set they were issued with. A no-op in header mode.
func (t *Transport) Clear(w http.ResponseWriter) {
	if !t.cookieMode {
		return
	}
	http.SetCookie(w, t.newCookie(t.cookieName, "", true, -1))
	http.SetCookie(w, t.newCookie(t.csrfCookieName, "", false, -1))
}

// Extract finds the caller's token: the named session cookie first when
// cookie mode is on, then a Bearer value in the Authorization header.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	if t.cookieMode {
		if c, err := r.Cookie(t.cookieName); err == nil && c.Value != "" {
			return c.Value, true
		}
	}

	authz := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(authz, "Bearer "); found && token != "" {
		return token, true
	}
	return "", false
}

// CSRFPair returns the CSRF cookie value and the echoed header value for a
// request. Either may be empty when absent.
func (t *Transport) CSRFPair(r *http.Request) (cookieValue, headerValue string) {
	if c, err := r.Cookie(t.csrfCookieName); err == nil {
		cookieValue = c.Value
	}
	return cookieValue, r.Header.Get(t.csrfHeaderName)
}
