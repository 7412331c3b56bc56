// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"campusconnect/internal/model"
)

func postForm(t *testing.T, path string, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testLogger(), testRenderer(t, sm), sm, nil)

	req := requestWithSession(sm, postForm(t, RouteRegister, url.Values{
		"username": {"founder"},
		"email":    {"founder@x.edu"},
		"password": {"longenough"},
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != RouteRoot {
		t.Errorf("redirect = %q, want %q", loc, RouteRoot)
	}

	var role string
	var isAdmin bool
	if err := db.QueryRow(`SELECT role, is_admin FROM users WHERE username = 'founder'`).Scan(&role, &isAdmin); err != nil {
		t.Fatalf("reading user: %v", err)
	}
	if role != model.RoleAdmin || !isAdmin {
		t.Errorf("first user role = %q, is_admin = %v; want admin/true", role, isAdmin)
	}
}

func TestRegisterSecondUserIsAttendee(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testLogger(), testRenderer(t, sm), sm, nil)
	createTestUser(t, db, testUser{Username: "first", Email: "first@x.edu", Role: model.RoleAdmin, IsAdmin: true})

	req := requestWithSession(sm, postForm(t, RouteRegister, url.Values{
		"username": {"second"},
		"email":    {"second@x.edu"},
		"password": {"longenough"},
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)

	var role string
	if err := db.QueryRow(`SELECT role FROM users WHERE username = 'second'`).Scan(&role); err != nil {
		t.Fatalf("reading user: %v", err)
	}
	if role != model.RoleAttendee {
		t.Errorf("second user role = %q, want attendee", role)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testLogger(), testRenderer(t, sm), sm, nil)

	req := requestWithSession(sm, postForm(t, RouteRegister, url.Values{
		"username": {"u"},
		"email":    {"u@x.edu"},
		"password": {"short"},
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != RouteRegister {
		t.Errorf("redirect = %q, want back to %q", loc, RouteRegister)
	}
}

func TestLogin(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testLogger(), testRenderer(t, sm), sm, nil)
	createTestUser(t, db, testUser{
		Username: "Casey", Email: "casey@x.edu", Role: model.RoleAttendee, Password: "correct-horse",
	})

	tests := []struct {
		name     string
		username string
		password string
		wantLoc  string
	}{
		{"success", "Casey", "correct-horse", RouteRoot},
		{"wrong password", "Casey", "wrong", RouteLogin},
		{"wrong case username", "casey", "correct-horse", RouteLogin},
		{"unknown user", "nobody", "correct-horse", RouteLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithSession(sm, postForm(t, RouteLogin, url.Values{
				"username": {tt.username},
				"password": {tt.password},
			}))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			assertStatus(t, rec.Code, http.StatusSeeOther)
			if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("redirect = %q, want %q", loc, tt.wantLoc)
			}
		})
	}
}

func TestLoginAdminGoesToUserList(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testLogger(), testRenderer(t, sm), sm, nil)
	createTestUser(t, db, testUser{
		Username: "boss", Email: "boss@x.edu", Role: model.RoleAdmin, IsAdmin: true, Password: "correct-horse",
	})

	req := requestWithSession(sm, postForm(t, RouteLogin, url.Values{
		"username": {"boss"},
		"password": {"correct-horse"},
	}))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != RouteAdminUsers {
		t.Errorf("redirect = %q, want %q", loc, RouteAdminUsers)
	}
}

func TestLogout(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testLogger(), testRenderer(t, sm), sm, nil)

	req := requestWithSession(sm, httptest.NewRequest(http.MethodPost, RouteLogout, nil))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != RouteLogin {
		t.Errorf("redirect = %q, want %q", loc, RouteLogin)
	}
}
