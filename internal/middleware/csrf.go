// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/olegiv/bloghost/internal/session"
)

// CSRF creates middleware enforcing the double-submit cookie pattern:
// state-changing requests authenticated by the session cookie must echo the
// CSRF cookie value in the configured header. Safe methods pass through, as
// do requests in header mode or without a session cookie (a header-mode
// client cannot be ridden cross-site because the attacker cannot set the
// Authorization header).
func CSRF(transport *session.Transport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !transport.CookieMode() || !hasSessionCookie(r, transport) {
				next.ServeHTTP(w, r)
				return
			}

			cookieValue, headerValue := transport.CSRFPair(r)
			if cookieValue == "" || headerValue == "" ||
				subtle.ConstantTimeCompare([]byte(cookieValue), []byte(headerValue)) != 1 {
				WriteAPIError(w, http.StatusForbidden, "csrf_mismatch",
					"CSRF token missing or invalid", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasSessionCookie(r *http.Request, transport *session.Transport) bool {
	for _, c := range r.Cookies() {
		if c.Name == transport.SessionCookieName() && c.Value != "" {
			return true
		}
	}
	return false
}
