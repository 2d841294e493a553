// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/bloghost/internal/cache"
)

// newTestThrottle returns a throttle over a memory cache with a controllable
// clock. Moving the clock forward does not expire cache entries (the memory
// cache uses the real clock), so tests exercise the window/lockout logic,
// not TTL eviction.
func newTestThrottle(t *testing.T) (*Throttle, *time.Time) {
	t.Helper()

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	t.Cleanup(func() { _ = c.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th := NewThrottle(c, ThrottleConfig{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     15 * time.Minute,
	})
	th.now = func() time.Time { return now }
	return th, &now
}

func TestThrottleBlocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	for i := 1; i <= 4; i++ {
		blocked, _ := th.RecordFailure(ctx, "a@example.com")
		if blocked {
			t.Fatalf("blocked after only %d failures", i)
		}
	}
	if blocked, _ := th.IsBlocked(ctx, "a@example.com"); blocked {
		t.Fatal("blocked before threshold")
	}

	blocked, dur := th.RecordFailure(ctx, "a@example.com")
	if !blocked {
		t.Fatal("5th failure did not block")
	}
	if dur != 15*time.Minute {
		t.Errorf("expected 15m lockout, got %s", dur)
	}

	blocked, remaining := th.IsBlocked(ctx, "a@example.com")
	if !blocked {
		t.Fatal("IsBlocked false right after blocking")
	}
	if remaining <= 0 || remaining > 15*time.Minute {
		t.Errorf("unexpected remaining duration %s", remaining)
	}
}

func TestThrottleWindowRestartsCounter(t *testing.T) {
	ctx := context.Background()
	th, now := newTestThrottle(t)

	for i := 0; i < 4; i++ {
		th.RecordFailure(ctx, "a@example.com")
	}

	// Past the window, the stale counter restarts instead of accumulating.
	*now = now.Add(16 * time.Minute)
	if blocked, _ := th.RecordFailure(ctx, "a@example.com"); blocked {
		t.Fatal("failure outside the window must not trigger a block")
	}
	if got := th.RemainingAttempts(ctx, "a@example.com"); got != 4 {
		t.Errorf("expected 4 remaining after window restart, got %d", got)
	}
}

func TestThrottleLockoutExpires(t *testing.T) {
	ctx := context.Background()
	th, now := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		th.RecordFailure(ctx, "a@example.com")
	}
	if blocked, _ := th.IsBlocked(ctx, "a@example.com"); !blocked {
		t.Fatal("expected block after threshold")
	}

	*now = now.Add(16 * time.Minute)
	if blocked, _ := th.IsBlocked(ctx, "a@example.com"); blocked {
		t.Fatal("block should have lapsed after the lockout duration")
	}

	// The counter was cleared when the block engaged, so the next failure
	// starts a fresh window.
	if blocked, _ := th.RecordFailure(ctx, "a@example.com"); blocked {
		t.Fatal("first failure after lockout must not block")
	}
}

func TestThrottleResetClearsState(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		th.RecordFailure(ctx, "a@example.com")
	}
	th.Reset(ctx, "a@example.com")

	if blocked, _ := th.IsBlocked(ctx, "a@example.com"); blocked {
		t.Fatal("Reset did not clear the block")
	}
	if got := th.RemainingAttempts(ctx, "a@example.com"); got != 5 {
		t.Errorf("expected full attempts after reset, got %d", got)
	}
}

func TestThrottleNormalizesIdentifier(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	th.RecordFailure(ctx, "A@Example.COM ")
	th.RecordFailure(ctx, "a@example.com")

	if got := th.RemainingAttempts(ctx, " A@EXAMPLE.com"); got != 3 {
		t.Errorf("spelling variants must share one counter, remaining = %d", got)
	}
}

func TestThrottleIdentifiersAreIndependent(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		th.RecordFailure(ctx, "a@example.com")
	}
	if blocked, _ := th.IsBlocked(ctx, "b@example.com"); blocked {
		t.Error("block leaked to an unrelated identifier")
	}
}
