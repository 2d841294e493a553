// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"BLOG_DB_PATH" envDefault:"./data/bloghost.db"`
	ServerHost string `env:"BLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BLOG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BLOG_ENV" envDefault:"development"`
	LogLevel   string `env:"BLOG_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"BLOG_UPLOADS_DIR" envDefault:"./uploads"`

	// Token configuration
	JWTSecret        string        `env:"BLOG_JWT_SECRET,required"`
	TokenTTL         time.Duration `env:"BLOG_TOKEN_TTL" envDefault:"24h"`     // Short-lived session tokens
	RememberTokenTTL time.Duration `env:"BLOG_REMEMBER_TTL" envDefault:"720h"` // "Remember me" tokens (30 days)

	// Session transport configuration. When CookieMode is false the token
	// travels only in the Authorization header and no cookies are issued.
	CookieMode     bool   `env:"BLOG_COOKIE_MODE" envDefault:"true"`
	CookieName     string `env:"BLOG_COOKIE_NAME" envDefault:"bloghost_session"`
	CookieDomain   string `env:"BLOG_COOKIE_DOMAIN"`
	CookieSameSite string `env:"BLOG_COOKIE_SAMESITE" envDefault:"lax"` // lax|strict|none
	CookieSecure   bool   `env:"BLOG_COOKIE_SECURE" envDefault:"false"`
	CSRFCookieName string `env:"BLOG_CSRF_COOKIE_NAME" envDefault:"bloghost_csrf"`
	CSRFHeaderName string `env:"BLOG_CSRF_HEADER_NAME" envDefault:"X-CSRF-Token"`

	// APIBaseURL is the public origin used to resolve relative asset paths
	// (logos, uploads) into absolute URLs. Empty means relative paths are
	// returned as-is (e.g. local development behind a single origin).
	APIBaseURL string `env:"BLOG_API_BASE_URL"`

	// Login throttle configuration
	MaxFailedLogins int           `env:"BLOG_MAX_FAILED_LOGINS" envDefault:"5"`
	LoginWindow     time.Duration `env:"BLOG_LOGIN_WINDOW" envDefault:"15m"`
	LoginLockout    time.Duration `env:"BLOG_LOGIN_LOCKOUT" envDefault:"15m"`

	// Cache configuration
	RedisURL     string `env:"BLOG_REDIS_URL"`                           // Optional Redis URL for distributed caching
	CachePrefix  string `env:"BLOG_CACHE_PREFIX" envDefault:"bloghost:"` // Redis key prefix
	CacheTTL     int    `env:"BLOG_CACHE_TTL" envDefault:"3600"`         // Default cache TTL in seconds
	CacheMaxSize int    `env:"BLOG_CACHE_MAX_SIZE" envDefault:"10000"`   // Max memory cache entries

	// Seeding configuration
	DoSeed bool `env:"BLOG_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SameSite maps the configured SameSite string to its http constant.
// Unknown values fall back to Lax.
func (c Config) SameSite() http.SameSite {
	switch strings.ToLower(c.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate signing secret length
	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("BLOG_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("BLOG_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("BLOG_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.RememberTokenTTL <= cfg.TokenTTL {
		return nil, fmt.Errorf("BLOG_REMEMBER_TTL (%s) must be longer than BLOG_TOKEN_TTL (%s)",
			cfg.RememberTokenTTL, cfg.TokenTTL)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
