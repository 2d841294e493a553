// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func rateLimitedOK(rps float64, burst int) http.Handler {
	return IPRateLimit(rps, burst)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestIPRateLimitEnforcesBurst(t *testing.T) {
	h := rateLimitedOK(0.001, 2)

	for i := 0; i < 2; i++ {
		if w := doRequest(h, "203.0.113.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, expected 200", i+1, w.Code)
		}
	}

	w := doRequest(h, "203.0.113.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("over-burst request: status = %d, expected 429", w.Code)
	}
}

func TestIPRateLimitIsolatesClients(t *testing.T) {
	h := rateLimitedOK(0.001, 1)

	if w := doRequest(h, "203.0.113.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("first client: status = %d, expected 200", w.Code)
	}
	if w := doRequest(h, "203.0.113.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client second request: status = %d, expected 429", w.Code)
	}

	// A different IP gets its own bucket.
	if w := doRequest(h, "203.0.113.2:1234"); w.Code != http.StatusOK {
		t.Errorf("second client: status = %d, expected 200", w.Code)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")
	lc.get("c")

	if cleared := lc.clearIfExceeds(10); cleared {
		t.Error("cache cleared below the size bound")
	}
	if cleared := lc.clearIfExceeds(2); !cleared {
		t.Error("cache not cleared above the size bound")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("limiters remaining after clear: %d", len(lc.limiters))
	}
}
