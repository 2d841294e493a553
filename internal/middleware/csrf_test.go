// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/bloghost/internal/config"
	"github.com/olegiv/bloghost/internal/session"
)

func csrfTransport(cookieMode bool) *session.Transport {
	return session.NewTransport(&config.Config{
		CookieMode:     cookieMode,
		CookieName:     "bloghost_session",
		CookieSameSite: "lax",
		CSRFCookieName: "bloghost_csrf",
		CSRFHeaderName: "X-CSRF-Token",
	})
}

func TestCSRFAllowsSafeMethods(t *testing.T) {
	h := CSRF(csrfTransport(true))(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		r := httptest.NewRequest(method, "/", nil)
		r.AddCookie(&http.Cookie{Name: "bloghost_session", Value: "tok"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", method, rec.Code, http.StatusOK)
		}
	}
}

func TestCSRFRejectsMissingHeader(t *testing.T) {
	h := CSRF(csrfTransport(true))(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: "bloghost_session", Value: "tok"})
	r.AddCookie(&http.Cookie{Name: "bloghost_csrf", Value: "abc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCSRFRejectsMismatch(t *testing.T) {
	h := CSRF(csrfTransport(true))(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: "bloghost_session", Value: "tok"})
	r.AddCookie(&http.Cookie{Name: "bloghost_csrf", Value: "abc"})
	r.Header.Set("X-CSRF-Token", "different")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCSRFAllowsMatchingPair(t *testing.T) {
	h := CSRF(csrfTransport(true))(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: "bloghost_session", Value: "tok"})
	r.AddCookie(&http.Cookie{Name: "bloghost_csrf", Value: "abc"})
	r.Header.Set("X-CSRF-Token", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

// A client authenticating via the Authorization header carries no session
// cookie, so cross-site request forgery does not apply to it.
func TestCSRFSkipsHeaderModeClients(t *testing.T) {
	h := CSRF(csrfTransport(true))(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCSRFSkipsWhenCookieModeDisabled(t *testing.T) {
	h := CSRF(csrfTransport(false))(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
