// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic job that publishes posts whose
// scheduled time has arrived.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/service"
	"github.com/olegiv/bloghost/internal/store"
)

// Scheduler handles scheduled tasks like publishing posts.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	events *service.EventService
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		events: service.NewEventService(db),
		logger: logger,
	}
}

// Start begins the scheduler with a job checking for due posts every minute.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.publishDuePosts(); err != nil {
			s.logger.Error("failed to publish scheduled posts", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// publishDuePosts flips scheduled posts whose time has passed to published.
func (s *Scheduler) publishDuePosts() error {
	ctx := context.Background()
	queries := store.New(s.db)

	now := time.Now()
	published, err := queries.PublishDueScheduledPosts(ctx, now)
	if err != nil {
		return err
	}
	if published == 0 {
		return nil
	}

	s.logger.Info("published scheduled posts", "count", published)
	s.events.Log(ctx, model.EventLevelInfo, model.EventCategoryPost,
		"published scheduled posts", nil, "", map[string]any{
			"count":        published,
			"published_at": now.Format(time.RFC3339),
		})
	return nil
}
