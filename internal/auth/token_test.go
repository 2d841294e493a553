// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/olegiv/bloghost/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *model.User {
	return &model.User{
		ID:       42,
		Email:    "a@example.com",
		Username: "alice",
		Role:     model.RoleEditor,
		IsActive: true,
	}
}

func TestIssueAndVerify(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour, 720*time.Hour)

	token, err := ti.Issue(testUser(), false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID() != 42 {
		t.Errorf("expected user ID 42, got %d", claims.UserID())
	}
	if claims.Email != "a@example.com" || claims.Role != model.RoleEditor {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ti := NewTokenIssuer(testSecret, time.Hour, 720*time.Hour)
	ti.now = func() time.Time { return issued }

	token, err := ti.Issue(testUser(), false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// One second before expiry the token is still good.
	ti.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
	if _, err := ti.Verify(token); err != nil {
		t.Errorf("token rejected before expiry: %v", err)
	}

	// One second past expiry it is not.
	ti.now = func() time.Time { return issued.Add(time.Hour + time.Second) }
	if _, err := ti.Verify(token); err == nil {
		t.Error("token accepted after expiry")
	}
}

func TestRememberExtendsExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ti := NewTokenIssuer(testSecret, time.Hour, 720*time.Hour)
	ti.now = func() time.Time { return issued }

	token, err := ti.Issue(testUser(), true)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Far past the short TTL but within the remember window.
	ti.now = func() time.Time { return issued.Add(100 * time.Hour) }
	if _, err := ti.Verify(token); err != nil {
		t.Errorf("remember token rejected within extended TTL: %v", err)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour, 720*time.Hour)

	token, err := ti.Issue(testUser(), false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := ti.Verify(tampered); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour, 720*time.Hour)
	other := NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour, 720*time.Hour)

	token, err := ti.Issue(testUser(), false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different secret accepted")
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour, 720*time.Hour)

	u := testUser()
	u.Role = "superuser"
	token, err := ti.Issue(u, false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := ti.Verify(token); err == nil {
		t.Error("token with unknown role accepted")
	}
}

func TestClaimsUserIDMalformedSubject(t *testing.T) {
	c := &Claims{}
	c.Subject = "not-a-number"
	if got := c.UserID(); got != 0 {
		t.Errorf("expected 0 for malformed subject, got %d", got)
	}
}
