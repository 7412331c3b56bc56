// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"campusconnect/internal/model"
)

func TestSetRole(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewUserHandler(db, testLogger(), testRenderer(t, sm))

	boss := createTestUser(t, db, testUser{Username: "boss", Email: "boss@x.edu", Role: model.RoleAdmin, IsAdmin: true})
	member := createTestUser(t, db, testUser{Username: "member", Email: "member@x.edu", Role: model.RoleAttendee})
	idStr := strconv.FormatInt(member.ID, 10)

	req := requestWithUser(requestWithSession(sm, requestWithURLParams(
		postForm(t, "/admin/users/"+idStr+"/role", url.Values{"role": {model.RoleOrganizer}}),
		map[string]string{"id": idStr})), boss)
	rec := httptest.NewRecorder()
	h.SetRole(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != RouteAdminUsers {
		t.Errorf("redirect = %q, want %q", loc, RouteAdminUsers)
	}

	var role string
	if err := db.QueryRow(`SELECT role FROM users WHERE id = ?`, member.ID).Scan(&role); err != nil {
		t.Fatalf("reading user: %v", err)
	}
	if role != model.RoleOrganizer {
		t.Errorf("role = %q, want organizer", role)
	}
}

func TestSetRoleLastAdminRefused(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewUserHandler(db, testLogger(), testRenderer(t, sm))

	boss := createTestUser(t, db, testUser{Username: "boss", Email: "boss@x.edu", Role: model.RoleAdmin, IsAdmin: true})
	idStr := strconv.FormatInt(boss.ID, 10)

	req := requestWithUser(requestWithSession(sm, requestWithURLParams(
		postForm(t, "/admin/users/"+idStr+"/role", url.Values{"role": {model.RoleAttendee}}),
		map[string]string{"id": idStr})), boss)
	rec := httptest.NewRecorder()
	h.SetRole(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)

	var role string
	if err := db.QueryRow(`SELECT role FROM users WHERE id = ?`, boss.ID).Scan(&role); err != nil {
		t.Fatalf("reading user: %v", err)
	}
	if role != model.RoleAdmin {
		t.Errorf("role = %q, want admin unchanged", role)
	}
}

func TestSetRoleInvalidRole(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewUserHandler(db, testLogger(), testRenderer(t, sm))

	boss := createTestUser(t, db, testUser{Username: "boss", Email: "boss@x.edu", Role: model.RoleAdmin, IsAdmin: true})
	member := createTestUser(t, db, testUser{Username: "m", Email: "m@x.edu", Role: model.RoleAttendee})
	idStr := strconv.FormatInt(member.ID, 10)

	req := requestWithUser(requestWithSession(sm, requestWithURLParams(
		postForm(t, "/admin/users/"+idStr+"/role", url.Values{"role": {"wizard"}}),
		map[string]string{"id": idStr})), boss)
	rec := httptest.NewRecorder()
	h.SetRole(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)

	var role string
	if err := db.QueryRow(`SELECT role FROM users WHERE id = ?`, member.ID).Scan(&role); err != nil {
		t.Fatalf("reading user: %v", err)
	}
	if role != model.RoleAttendee {
		t.Errorf("role = %q, want attendee unchanged", role)
	}
}

func TestUserList(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewUserHandler(db, testLogger(), testRenderer(t, sm))

	createTestUser(t, db, testUser{Username: "zeta", Email: "z@x.edu", Role: model.RoleAttendee})
	createTestUser(t, db, testUser{Username: "alpha", Email: "a@x.edu", Role: model.RoleAdmin, IsAdmin: true})

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteAdminUsers, nil))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
}
