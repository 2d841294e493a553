// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic shared across handlers,
// including activity log recording.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/olegiv/bloghost/internal/store"
)

// EventService records activity log entries. Logging is best effort: a
// failed insert is reported but never propagated into the request outcome.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// Log creates a new activity log entry.
func (s *EventService) Log(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IPAddress: ipAddress,
		Metadata:  metadataJSON,
	})
	if err != nil {
		slog.Error("failed to record event", "error", err, "message", message)
	}
}
