// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/olegiv/bloghost/internal/model"
)

func TestRegisterCreatesEditor(t *testing.T) {
	_, h := testSetup(t)

	body := `{"email":"new@example.com","username":"newuser","password":"Str0ngP@ss!"}`
	w := executeHandler(t, h.Register, newJSONRequest(t, http.MethodPost, "/api/v1/auth/register", body, nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	user := unmarshalData[UserResponse](t, w)
	if user.Role != model.RoleEditor {
		t.Errorf("expected role %q, got %q", model.RoleEditor, user.Role)
	}
	if user.Email != "new@example.com" {
		t.Errorf("unexpected email %q", user.Email)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	_, h := testSetup(t)

	body := `{"email":"weak@example.com","username":"weakuser","password":"password"}`
	w := executeHandler(t, h.Register, newJSONRequest(t, http.MethodPost, "/api/v1/auth/register", body, nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db, h := testSetup(t)
	createTestUser(t, db, "taken@example.com", "taken", model.RoleEditor)

	body := `{"email":"taken@example.com","username":"other","password":"Str0ngP@ss!"}`
	w := executeHandler(t, h.Register, newJSONRequest(t, http.MethodPost, "/api/v1/auth/register", body, nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestLoginSuccessSetsCookiesAndReturnsToken(t *testing.T) {
	db, h := testSetup(t)
	createTestUser(t, db, "a@example.com", "alice", model.RoleEditor)

	body := fmt.Sprintf(`{"email":"a@example.com","password":%q}`, testPassword)
	w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", body, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := unmarshalData[LoginResponse](t, w)
	if resp.Token == "" {
		t.Error("expected token in response body")
	}
	if resp.CSRFToken == "" {
		t.Error("expected csrf_token in response body")
	}
	if resp.User.Email != "a@example.com" {
		t.Errorf("unexpected user %q", resp.User.Email)
	}

	var sessionCookie, csrfCookie bool
	for _, c := range w.Result().Cookies() {
		switch c.Name {
		case "bloghost_session":
			sessionCookie = true
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		case "bloghost_csrf":
			csrfCookie = true
			if c.HttpOnly {
				t.Error("csrf cookie must be readable by scripts")
			}
		}
	}
	if !sessionCookie || !csrfCookie {
		t.Errorf("expected both cookies, got session=%v csrf=%v", sessionCookie, csrfCookie)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db, h := testSetup(t)
	createTestUser(t, db, "a@example.com", "alice", model.RoleEditor)

	body := `{"email":"a@example.com","password":"Wr0ng-pass!"}`
	w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", body, nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginUnknownEmailSharesBadCredentialsResponse(t *testing.T) {
	_, h := testSetup(t)

	body := `{"email":"nobody@example.com","password":"Wr0ng-pass!"}`
	w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", body, nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	db, h := testSetup(t)
	createTestUser(t, db, "a@example.com", "alice", model.RoleEditor)

	wrong := `{"email":"a@example.com","password":"Wr0ng-pass!"}`
	for i := 0; i < 5; i++ {
		w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", wrong, nil))
		if i < 4 && w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
		if i == 4 && w.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt 5: expected 429 at threshold, got %d", w.Code)
		}
	}

	// Correct password during the lockout is still rejected.
	correct := fmt.Sprintf(`{"email":"a@example.com","password":%q}`, testPassword)
	w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", correct, nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 during lockout, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on lockout response")
	}
}

func TestLoginSuccessClearsThrottle(t *testing.T) {
	db, h := testSetup(t)
	createTestUser(t, db, "a@example.com", "alice", model.RoleEditor)

	wrong := `{"email":"a@example.com","password":"Wr0ng-pass!"}`
	for i := 0; i < 3; i++ {
		executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", wrong, nil))
	}

	correct := fmt.Sprintf(`{"email":"a@example.com","password":%q}`, testPassword)
	w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", correct, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 before threshold, got %d", w.Code)
	}

	// The counter is gone, so five fresh failures are needed to block again.
	for i := 0; i < 4; i++ {
		w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", wrong, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("post-reset attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}
}

func TestLoginInactiveUser(t *testing.T) {
	db, h := testSetup(t)
	user := createTestUser(t, db, "a@example.com", "alice", model.RoleEditor)
	if _, err := db.Exec(`UPDATE users SET is_active = 0 WHERE id = ?`, user.ID); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}

	body := fmt.Sprintf(`{"email":"a@example.com","password":%q}`, testPassword)
	w := executeHandler(t, h.Login, newJSONRequest(t, http.MethodPost, "/api/v1/auth/login", body, nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled account, got %d", w.Code)
	}
}

func TestLogoutClearsCookies(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.Logout, newJSONRequest(t, http.MethodPost, "/api/v1/auth/logout", "", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 clearing cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("cookie %q not cleared: value=%q maxAge=%d", c.Name, c.Value, c.MaxAge)
		}
	}
}

func TestMeReturnsPrincipal(t *testing.T) {
	db, h := testSetup(t)
	user := createTestUser(t, db, "a@example.com", "alice", model.RoleAdmin)

	req := requestAs(newGetRequest(t, "/api/v1/auth/me", nil), user)
	w := executeHandler(t, h.Me, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := unmarshalData[UserResponse](t, w)
	if resp.ID != user.ID || resp.Role != model.RoleAdmin {
		t.Errorf("unexpected principal: %+v", resp)
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	db, h := testSetup(t)
	user := createTestUser(t, db, "a@example.com", "alice", model.RoleEditor)

	body := `{"current_password":"Wr0ng-pass!","new_password":"N3w-Str0ng!"}`
	req := requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/auth/me/password", body, nil), user)
	w := executeHandler(t, h.ChangePassword, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	body = fmt.Sprintf(`{"current_password":%q,"new_password":"N3w-Str0ng!"}`, testPassword)
	req = requestAs(newJSONRequest(t, http.MethodPut, "/api/v1/auth/me/password", body, nil), user)
	w = executeHandler(t, h.ChangePassword, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
