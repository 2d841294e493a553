// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/olegiv/bloghost/internal/model"
	"github.com/olegiv/bloghost/internal/settings"
)

func TestListSettingsMasksSecret(t *testing.T) {
	db, h := testSetup(t)

	if _, err := db.Exec(
		`INSERT INTO settings (key, value, type, updated_at) VALUES ('smtp_password', 'hunter2', 'string', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("seeding secret: %v", err)
	}

	w := executeHandler(t, h.ListSettings, newGetRequest(t, "/api/v1/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	all, _ := unmarshalList[SettingResponse](t, w)

	var found bool
	for _, s := range all {
		if s.Key == model.SettingKeySMTPPassword {
			found = true
			if s.Value != settings.MaskedValue {
				t.Errorf("secret not masked: %q", s.Value)
			}
		}
		if s.Value == "hunter2" {
			t.Errorf("raw secret leaked under key %q", s.Key)
		}
	}
	if !found {
		t.Error("smtp_password missing from listing")
	}
}

func TestListSettingsIncludesDefaults(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.ListSettings, newGetRequest(t, "/api/v1/settings", nil))
	all, _ := unmarshalList[SettingResponse](t, w)

	byKey := map[string]SettingResponse{}
	for _, s := range all {
		byKey[s.Key] = s
	}
	if got := byKey[model.SettingKeySiteName]; got.Value != "Bloghost" {
		t.Errorf("expected default site_name, got %+v", got)
	}
	if got := byKey[model.SettingKeyPostsPerPage]; got.Type != model.SettingTypeInt {
		t.Errorf("expected int type for posts_per_page, got %+v", got)
	}
}

func TestUpdateSettingNormalizesKeyAndPreservesType(t *testing.T) {
	db, h := testSetup(t)
	admin := createTestUser(t, db, "admin@example.com", "admin", model.RoleAdmin)

	if _, err := db.Exec(
		`INSERT INTO settings (key, value, type, updated_at) VALUES ('posts_per_page', '10', 'int', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("seeding setting: %v", err)
	}

	// Legacy spelling of the key resolves to the canonical row; the stored
	// type survives a value-only update.
	req := requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/settings/Posts-Per-Page",
		`{"value":"25"}`, map[string]string{"key": "Posts-Per-Page"}), admin)
	w := executeHandler(t, h.UpdateSetting, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	setting := unmarshalData[SettingResponse](t, w)
	if setting.Key != "posts_per_page" {
		t.Errorf("expected normalized key, got %q", setting.Key)
	}
	if setting.Value != "25" || setting.Type != model.SettingTypeInt {
		t.Errorf("expected int 25, got %+v", setting)
	}
}

func TestUpdateSettingRejectsMaskedSecretWrite(t *testing.T) {
	db, h := testSetup(t)
	admin := createTestUser(t, db, "admin@example.com", "admin", model.RoleAdmin)

	req := requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/settings/smtp_password",
		`{"value":"`+settings.MaskedValue+`"}`, map[string]string{"key": "smtp_password"}), admin)
	w := executeHandler(t, h.UpdateSetting, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for masked placeholder write, got %d", w.Code)
	}
}

func TestUpdateSettingRejectsUnknownType(t *testing.T) {
	db, h := testSetup(t)
	admin := createTestUser(t, db, "admin@example.com", "admin", model.RoleAdmin)

	req := requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/settings/site_name",
		`{"value":"x","type":"float"}`, map[string]string{"key": "site_name"}), admin)
	w := executeHandler(t, h.UpdateSetting, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown type, got %d", w.Code)
	}
}
