// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/bloghost/internal/middleware"
	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/settings"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/util"
)

// maxUploadSize bounds multipart upload parsing (20 MB).
const maxUploadSize = 20 << 20

// MediaResponse represents a media item in API responses.
type MediaResponse struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Width        int64     `json:"width,omitempty"`
	Height       int64     `json:"height,omitempty"`
	UploadedBy   *int64    `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	URLs         MediaURLs `json:"urls"`
}

// MediaURLs contains resolved URLs for the stored variants.
type MediaURLs struct {
	Original  string `json:"original"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

func (h *Handler) mediaToResponse(m model.Media) MediaResponse {
	resp := MediaResponse{
		ID:           m.ID,
		UUID:         m.UUID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		Width:        int64(m.Width),
		Height:       int64(m.Height),
		CreatedAt:    m.CreatedAt,
	}
	if m.UploadedBy.Valid {
		resp.UploadedBy = &m.UploadedBy.Int64
	}
	resp.URLs.Original = settings.AssetURL(
		"/uploads/originals/"+m.UUID+"/"+m.Filename, h.cfg.APIBaseURL)
	if m.ThumbPath != "" {
		resp.URLs.Thumbnail = settings.AssetURL(
			"/uploads/thumbs/"+m.UUID+"/"+m.Filename, h.cfg.APIBaseURL)
	}
	return resp
}

// ListMedia handles GET /api/v1/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := parsePageParam(r)
	perPage := parsePerPageParam(r, 20, 100)

	media, err := h.queries.ListMedia(ctx, store.ListMediaParams{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		WriteInternalError(w, "Failed to list media")
		return
	}
	total, err := h.queries.CountMedia(ctx)
	if err != nil {
		WriteInternalError(w, "Failed to list media")
		return
	}

	responses := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		responses = append(responses, h.mediaToResponse(m))
	}
	WriteSuccess(w, responses, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pageCount(total, perPage),
	})
}

// GetMedia handles GET /api/v1/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID", nil)
		return
	}
	media, err := h.queries.GetMediaByID(r.Context(), id)
	if !requireEntity(w, err, "Media") {
		return
	}
	WriteSuccess(w, h.mediaToResponse(media), nil)
}

// UploadMedia handles POST /api/v1/media. Accepts multipart/form-data
// with a single "file" field.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "Failed to parse multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file provided in 'file' field", nil)
		return
	}
	defer func() { _ = file.Close() }()

	safeName, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "Invalid filename"})
		return
	}

	id := uuid.New().String()
	result, err := h.images.ProcessImage(file, id, safeName)
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "Unsupported or corrupt image"})
		return
	}

	params := store.CreateMediaParams{
		UUID:         id,
		Filename:     safeName,
		OriginalName: header.Filename,
		MimeType:     result.MimeType,
		Size:         result.Size,
		Width:        int(result.Width),
		Height:       int(result.Height),
		FilePath:     result.FilePath,
		UploadedBy:   sql.NullInt64{Int64: user.ID, Valid: true},
	}

	// Thumbnail creation is best effort; the original already exists.
	if thumb, err := h.images.CreateThumbnail(result.FilePath, id, safeName); err == nil && thumb != nil {
		params.ThumbPath = thumb.FilePath
	}

	media, err := h.queries.CreateMedia(ctx, params)
	if err != nil {
		_ = h.images.DeleteMediaFiles(id)
		WriteInternalError(w, "Failed to store media")
		return
	}

	h.events.Log(ctx, model.EventLevelInfo, model.EventCategoryMedia,
		"media uploaded: "+media.Filename, &user.ID, util.ClientIP(r), nil)

	WriteCreated(w, h.mediaToResponse(media))
}

// DeleteMedia handles DELETE /api/v1/media/{id}. Removes the stored
// files along with the record.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID", nil)
		return
	}
	media, err := h.queries.GetMediaByID(ctx, id)
	if !requireEntity(w, err, "Media") {
		return
	}

	if _, err := h.queries.DeleteMedia(ctx, id); err != nil {
		WriteInternalError(w, "Failed to delete media")
		return
	}
	if err := h.images.DeleteMediaFiles(media.UUID); err != nil {
		// The row is gone; orphaned files are only worth a warning.
		h.events.Log(ctx, model.EventLevelWarning, model.EventCategoryMedia,
			"failed to remove media files for "+media.UUID, &user.ID, util.ClientIP(r), nil)
	}

	w.WriteHeader(http.StatusNoContent)
}
