// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/bloghost/internal/model"
)

// ErrInvalidToken is returned by Verify for any token that cannot be
// accepted: bad signature, malformed payload or past expiry. Callers treat
// all of these as a single Unauthorized outcome.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the principal fields embedded in a session token. The verifier
// never re-fetches the user record, so role or identity changes made after
// issuance take effect only once the token expires.
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the token, or 0 if it is malformed.
func (c *Claims) UserID() int64 {
	var id int64
	_, err := fmt.Sscanf(c.Subject, "%d", &id)
	if err != nil {
		return 0
	}
	return id
}

// TokenIssuer signs and verifies HS256 session tokens with two expiry
// classes: the short default and the extended "remember me" duration.
type TokenIssuer struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewTokenIssuer creates a TokenIssuer with the given signing secret and
// expiry durations.
func NewTokenIssuer(secret string, ttl, rememberTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:      []byte(secret),
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// Issue signs a session token for the user. When remember is true the token
// carries the extended expiry.
func (ti *TokenIssuer) Issue(user *model.User, remember bool) (string, error) {
	ttl := ti.ttl
	if remember {
		ttl = ti.rememberTTL
	}

	now := ti.now().UTC()
	claims := Claims{
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning the embedded claims.
// Returns ErrInvalidToken for any signature, format or expiry failure.
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return ti.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if !model.ValidRole(claims.Role) || claims.UserID() == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
