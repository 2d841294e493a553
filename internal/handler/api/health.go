// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"
)

// healthProbeTimeout bounds how long a readiness check may wait on a
// dependency before reporting it down.
const healthProbeTimeout = 2 * time.Second

// HealthResponse represents the readiness probe result.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz handles GET /api/v1/healthz. Pure liveness, no dependencies.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, HealthResponse{Status: "ok"}, nil)
}

// Readyz handles GET /api/v1/readyz, probing the database and cache
// backend with a bounded wait.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok", "cache": "ok"}
	status := "ok"

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		status = "degraded"
	}
	if h.cache != nil {
		if _, err := h.cache.Has(ctx, "health:probe"); err != nil {
			checks["cache"] = err.Error()
			status = "degraded"
		}
	}

	if status != "ok" {
		WriteJSON(w, http.StatusServiceUnavailable, Response{
			Data: HealthResponse{Status: status, Checks: checks},
		})
		return
	}
	WriteSuccess(w, HealthResponse{Status: status, Checks: checks}, nil)
}
