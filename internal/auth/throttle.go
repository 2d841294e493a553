// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/bloghost/internal/cache"
)

// Throttle slows down credential guessing by counting failed logins per
// identifier and enforcing a temporary lockout. State lives in a TTL-capable
// cache, so stale entries expire on their own instead of accumulating, and a
// Redis-backed cache makes the lockout consistent across instances.
type Throttle struct {
	cache       cache.Cacher
	maxAttempts int
	window      time.Duration
	lockout     time.Duration

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// ThrottleConfig holds configuration for the login throttle.
type ThrottleConfig struct {
	// MaxAttempts before lockout (default: 5)
	MaxAttempts int
	// Window is the time span during which failures accumulate (default: 15 minutes)
	Window time.Duration
	// Lockout is how long an identifier stays blocked (default: 15 minutes)
	Lockout time.Duration
}

// DefaultThrottleConfig returns sensible defaults.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     15 * time.Minute,
	}
}

// NewThrottle creates a login throttle backed by the given cache.
func NewThrottle(c cache.Cacher, cfg ThrottleConfig) *Throttle {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 15 * time.Minute
	}

	return &Throttle{
		cache:       c,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
		lockout:     cfg.Lockout,
		now:         time.Now,
	}
}

// failureRecord tracks failed attempts within the current window.
type failureRecord struct {
	Count int       `json:"count"`
	First time.Time `json:"first"`
}

const (
	attemptsKeyPrefix = "login:attempts:"
	blockKeyPrefix    = "login:block:"
)

// normalizeIdentifier lowercases and trims the identifier so that spelling
// variants of one email address share a single counter.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// IsBlocked reports whether the identifier is currently locked out, and if
// so for how much longer. Checked before any password verification so a
// locked account never touches the hash.
func (t *Throttle) IsBlocked(ctx context.Context, identifier string) (bool, time.Duration) {
	key := blockKeyPrefix + normalizeIdentifier(identifier)

	data, err := t.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Error("throttle block lookup failed", "error", err)
		}
		return false, 0
	}

	blockedUntil, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return false, 0
	}

	if remaining := blockedUntil.Sub(t.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailure counts a failed login for the identifier. Failures outside
// the window restart the counter; reaching the threshold installs a block
// and clears the counter so a fresh window starts once the block lifts.
// Returns (true, lockout duration) when this failure triggered the block.
func (t *Throttle) RecordFailure(ctx context.Context, identifier string) (bool, time.Duration) {
	id := normalizeIdentifier(identifier)
	key := attemptsKeyPrefix + id
	now := t.now()

	rec := failureRecord{Count: 0, First: now}
	if data, err := t.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal(data, &rec); err != nil {
			rec = failureRecord{Count: 0, First: now}
		}
	}

	// Failures outside the window do not accumulate toward a lockout.
	if rec.Count == 0 || now.Sub(rec.First) > t.window {
		rec = failureRecord{Count: 1, First: now}
	} else {
		rec.Count++
	}

	if rec.Count >= t.maxAttempts {
		blockedUntil := now.Add(t.lockout)
		if err := t.cache.Set(ctx, blockKeyPrefix+id, []byte(blockedUntil.Format(time.RFC3339Nano)), t.lockout); err != nil {
			slog.Error("throttle block write failed", "error", err)
		}
		_ = t.cache.Delete(ctx, key)

		slog.Warn("login throttle engaged",
			"identifier", id,
			"attempts", rec.Count,
			"duration", t.lockout,
		)
		return true, t.lockout
	}

	data, err := json.Marshal(rec)
	if err == nil {
		if err := t.cache.Set(ctx, key, data, t.window); err != nil {
			slog.Error("throttle attempt write failed", "error", err)
		}
	}
	return false, 0
}

// Reset clears all throttle state for the identifier. Called exactly once,
// on successful authentication.
func (t *Throttle) Reset(ctx context.Context, identifier string) {
	id := normalizeIdentifier(identifier)
	_ = t.cache.Delete(ctx, attemptsKeyPrefix+id)
	_ = t.cache.Delete(ctx, blockKeyPrefix+id)
}

// RemainingAttempts returns how many failures are left before lockout.
func (t *Throttle) RemainingAttempts(ctx context.Context, identifier string) int {
	key := attemptsKeyPrefix + normalizeIdentifier(identifier)

	data, err := t.cache.Get(ctx, key)
	if err != nil {
		return t.maxAttempts
	}

	var rec failureRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return t.maxAttempts
	}
	if t.now().Sub(rec.First) > t.window {
		return t.maxAttempts
	}

	remaining := t.maxAttempts - rec.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}
