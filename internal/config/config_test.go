// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"net/http"
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment and set only required var
	os.Clearenv()
	setEnv(t, "BLOG_JWT_SECRET", "test-secret-key-32-bytes-long!!!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/bloghost.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/bloghost.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if !cfg.CookieMode {
		t.Error("CookieMode = false, want true")
	}
	if cfg.MaxFailedLogins != 5 {
		t.Errorf("MaxFailedLogins = %d, want 5", cfg.MaxFailedLogins)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	customSecret := "custom-secret-key-32-bytes-long!"
	setEnv(t, "BLOG_JWT_SECRET", customSecret)
	setEnv(t, "BLOG_DB_PATH", "/custom/path.db")
	setEnv(t, "BLOG_SERVER_HOST", "0.0.0.0")
	setEnv(t, "BLOG_SERVER_PORT", "3000")
	setEnv(t, "BLOG_COOKIE_MODE", "false")
	setEnv(t, "BLOG_TOKEN_TTL", "1h")
	setEnv(t, "BLOG_REMEMBER_TTL", "48h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.JWTSecret != customSecret {
		t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, customSecret)
	}
	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.CookieMode {
		t.Error("CookieMode = true, want false")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded without BLOG_JWT_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BLOG_JWT_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a secret below the minimum length")
	}
}

func TestLoad_KnownWeakSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BLOG_JWT_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a known default secret")
	}
}

func TestLoad_RememberTTLMustExceedTokenTTL(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BLOG_JWT_SECRET", "test-secret-key-32-bytes-long!!!")
	setEnv(t, "BLOG_TOKEN_TTL", "48h")
	setEnv(t, "BLOG_REMEMBER_TTL", "24h")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a remember TTL shorter than the token TTL")
	}
}

func TestSameSiteMapping(t *testing.T) {
	tests := []struct {
		value string
		want  http.SameSite
	}{
		{"lax", http.SameSiteLaxMode},
		{"strict", http.SameSiteStrictMode},
		{"none", http.SameSiteNoneMode},
		{"STRICT", http.SameSiteStrictMode},
		{"bogus", http.SameSiteLaxMode},
		{"", http.SameSiteLaxMode},
	}

	for _, tt := range tests {
		cfg := Config{CookieSameSite: tt.value}
		if got := cfg.SameSite(); got != tt.want {
			t.Errorf("SameSite(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestUseRedisCache(t *testing.T) {
	if (Config{}).UseRedisCache() {
		t.Error("UseRedisCache() = true with no URL configured")
	}
	if !(Config{RedisURL: "redis://localhost:6379/0"}).UseRedisCache() {
		t.Error("UseRedisCache() = false with a URL configured")
	}
}
