// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/settings"
	"github.com/olegiv/bloghost/internal/util"
)

// SettingResponse represents a setting in API responses. Secret values
// arrive already masked by the resolver.
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Type      string    `json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy *int64    `json:"updated_by,omitempty"`
}

func settingToResponse(s model.Setting) SettingResponse {
	resp := SettingResponse{
		Key:       s.Key,
		Value:     s.Value,
		Type:      s.Type,
		UpdatedAt: s.UpdatedAt,
	}
	if s.UpdatedBy.Valid {
		resp.UpdatedBy = &s.UpdatedBy.Int64
	}
	return resp
}

// ListSettings handles GET /api/v1/settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.All(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list settings")
		return
	}
	responses := make([]SettingResponse, 0, len(all))
	for _, s := range all {
		responses = append(responses, settingToResponse(s))
	}
	WriteSuccess(w, responses, nil)
}

// UpdateSettingRequest represents the request body for updating a setting.
// Type is optional; when omitted the stored type is preserved.
type UpdateSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// UpdateSetting handles PUT /api/v1/settings/{key}. Admin only.
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	key := chi.URLParam(r, "key")
	if settings.NormalizeKey(key) == "" {
		WriteBadRequest(w, "Invalid setting key", nil)
		return
	}

	var req UpdateSettingRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Type != "" && !model.ValidSettingType(req.Type) {
		WriteValidationError(w, map[string]string{"type": "Unknown setting type"})
		return
	}

	setting, err := h.settings.Update(ctx, key, req.Value, req.Type, user.ID)
	if err != nil {
		WriteValidationError(w, map[string]string{"value": err.Error()})
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategorySettings,
		"setting updated: "+setting.Key, &user.ID, util.ClientIP(r), nil)

	WriteSuccess(w, settingToResponse(setting), nil)
}
