// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/olegiv/bloghost/internal/model"
)

func TestCreateCategory(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)

	req := requestAs(newJSONRequest(t, http.MethodPost, "/api/v1/categories",
		`{"name":"Tech News","description":"All things tech"}`, nil), editor)
	w := executeHandler(t, h.CreateCategory, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	cat := unmarshalData[CategoryResponse](t, w)
	if cat.Slug != "tech-news" {
		t.Errorf("expected slug %q, got %q", "tech-news", cat.Slug)
	}
	if cat.Description != "All things tech" {
		t.Errorf("unexpected description %q", cat.Description)
	}
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)

	req := requestAs(newJSONRequest(t, http.MethodPost, "/api/v1/categories",
		`{"name":"News"}`, nil), editor)
	if w := executeHandler(t, h.CreateCategory, req); w.Code != http.StatusCreated {
		t.Fatalf("first create: %d", w.Code)
	}

	req = requestAs(newJSONRequest(t, http.MethodPost, "/api/v1/categories",
		`{"name":"Other","slug":"news"}`, nil), editor)
	w := executeHandler(t, h.CreateCategory, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for duplicate slug, got %d", w.Code)
	}
}

func TestUpdateCategoryPartial(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)

	req := requestAs(newJSONRequest(t, http.MethodPost, "/api/v1/categories",
		`{"name":"News","description":"Old"}`, nil), editor)
	if w := executeHandler(t, h.CreateCategory, req); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}

	req = requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/categories/1",
		`{"description":"New"}`, map[string]string{"id": "1"}), editor)
	w := executeHandler(t, h.UpdateCategory, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cat := unmarshalData[CategoryResponse](t, w)
	if cat.Name != "News" || cat.Description != "New" {
		t.Errorf("partial update wrong: %+v", cat)
	}
}

func TestDeleteCategoryNotFound(t *testing.T) {
	_, h := testSetup(t)

	req := newJSONRequest(t, http.MethodDelete, "/api/v1/categories/99", "",
		map[string]string{"id": "99"})
	w := executeHandler(t, h.DeleteCategory, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTagLifecycle(t *testing.T) {
	db, h := testSetup(t)
	editor := createTestUser(t, db, "e@example.com", "editor", model.RoleEditor)

	req := requestAs(newJSONRequest(t, http.MethodPost, "/api/v1/tags",
		`{"name":"Go Programming"}`, nil), editor)
	w := executeHandler(t, h.CreateTag, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	tag := unmarshalData[TagResponse](t, w)
	if tag.Slug != "go-programming" {
		t.Errorf("expected slug %q, got %q", "go-programming", tag.Slug)
	}

	req = requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/tags/1",
		`{"name":"Golang"}`, map[string]string{"id": "1"}), editor)
	w = executeHandler(t, h.UpdateTag, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", w.Code)
	}
	tag = unmarshalData[TagResponse](t, w)
	if tag.Name != "Golang" {
		t.Errorf("expected renamed tag, got %q", tag.Name)
	}

	w = executeHandler(t, h.ListTags, newGetRequest(t, "/api/v1/tags", nil))
	tags, _ := unmarshalList[TagResponse](t, w)
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}

	req = newJSONRequest(t, http.MethodDelete, "/api/v1/tags/1", "",
		map[string]string{"id": "1"})
	w = executeHandler(t, h.DeleteTag, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
}
