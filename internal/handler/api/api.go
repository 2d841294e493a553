// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/bloghost/internal/auth"
	"github.com/olegiv/bloghost/internal/cache"
	"github.com/olegiv/bloghost/internal/config"
	"github.com/olegiv/bloghost/internal/imaging"
	"github.com/olegiv/bloghost/internal/service"
	"github.com/olegiv/bloghost/internal/session"
	"github.com/olegiv/bloghost/internal/settings"
	"github.com/olegiv/bloghost/internal/store"
	"github.com/olegiv/bloghost/internal/version"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	cfg       *config.Config
	transport *session.Transport
	issuer    *auth.TokenIssuer
	throttle  *auth.Throttle
	settings  *settings.Resolver
	cache     cache.Cacher
	events    *service.EventService
	images    *imaging.Processor
	version   *version.Info
}

// Deps carries the collaborators a Handler needs.
type Deps struct {
	DB        *sql.DB
	Config    *config.Config
	Transport *session.Transport
	Issuer    *auth.TokenIssuer
	Throttle  *auth.Throttle
	Settings  *settings.Resolver
	Cache     cache.Cacher
	Version   *version.Info
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		db:        d.DB,
		queries:   store.New(d.DB),
		cfg:       d.Config,
		transport: d.Transport,
		issuer:    d.Issuer,
		throttle:  d.Throttle,
		settings:  d.Settings,
		cache:     d.Cache,
		events:    service.NewEventService(d.DB),
		images:    imaging.NewProcessor(d.Config.UploadsDir),
		version:   d.Version,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parsePageParam returns the 1-based page number from the query string.
func parsePageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parsePerPageParam returns the page size from the query string, bounded
// by max and defaulting to def.
func parsePerPageParam(r *http.Request, def, max int) int {
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 {
		return def
	}
	if perPage > max {
		return max
	}
	return perPage
}

// pageCount computes the number of pages for a total and page size.
func pageCount(total int64, perPage int) int {
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return pages
}

// decodeJSONBody decodes a JSON request body, rejecting unknown fields.
func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// requireEntity maps a fetch error to the right API response. Returns true
// when the entity loaded; false means a response was already written.
func requireEntity(w http.ResponseWriter, err error, entityName string) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, entityName+" not found")
	} else {
		WriteInternalError(w, "Failed to retrieve "+entityName)
	}
	return false
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	v := "dev"
	if h.version != nil && h.version.Version != "" {
		v = h.version.Version
	}
	WriteSuccess(w, StatusResponse{Status: "ok", Version: v}, nil)
}
