// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"campusconnect/internal/imaging"
)

func TestIndexSweepsPastEvents(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewEventHandler(db, testLogger(), testRenderer(t, sm),
		imaging.NewProcessor(t.TempDir()), 2<<20)

	now := time.Now()
	createTestEvent(t, db, "Ancient History", now.AddDate(0, 0, -5))
	futureID := createTestEvent(t, db, "Coming Up", now.AddDate(0, 0, 5))

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteRoot, nil))
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if n != 1 {
		t.Errorf("events after index render = %d, want 1 (past event swept)", n)
	}
	var title string
	if err := db.QueryRow(`SELECT title FROM events WHERE id = ?`, futureID).Scan(&title); err != nil {
		t.Errorf("future event should survive: %v", err)
	}
}

func TestCalendarSweepsPastEvents(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewEventHandler(db, testLogger(), testRenderer(t, sm),
		imaging.NewProcessor(t.TempDir()), 2<<20)

	createTestEvent(t, db, "Long Gone", time.Now().AddDate(0, 0, -1))

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteCalendar, nil))
	rec := httptest.NewRecorder()
	h.Calendar(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if n != 0 {
		t.Errorf("events after calendar render = %d, want 0", n)
	}
}

func TestDetailNotFound(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewEventHandler(db, testLogger(), testRenderer(t, sm),
		imaging.NewProcessor(t.TempDir()), 2<<20)

	req := requestWithSession(sm, requestWithURLParams(
		httptest.NewRequest(http.MethodGet, "/events/42", nil),
		map[string]string{"id": "42"}))
	rec := httptest.NewRecorder()
	h.Detail(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != RouteRoot {
		t.Errorf("redirect = %q, want %q", loc, RouteRoot)
	}
}

func TestDetailBadID(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewEventHandler(db, testLogger(), testRenderer(t, sm),
		imaging.NewProcessor(t.TempDir()), 2<<20)

	req := requestWithSession(sm, requestWithURLParams(
		httptest.NewRequest(http.MethodGet, "/events/abc", nil),
		map[string]string{"id": "abc"}))
	rec := httptest.NewRecorder()
	h.Detail(rec, req)

	assertStatus(t, rec.Code, http.StatusNotFound)
}

func TestAttend(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewEventHandler(db, testLogger(), testRenderer(t, sm),
		imaging.NewProcessor(t.TempDir()), 2<<20)

	eventID := createTestEvent(t, db, "Career Fair", time.Now().AddDate(0, 0, 3))
	idStr := strconv.FormatInt(eventID, 10)

	attend := func() *httptest.ResponseRecorder {
		req := requestWithSession(sm, requestWithURLParams(
			postForm(t, "/events/"+idStr+"/attend", url.Values{
				"name":  {"Sam"},
				"email": {"sam@x.edu"},
			}),
			map[string]string{"id": idStr}))
		rec := httptest.NewRecorder()
		h.Attend(rec, req)
		return rec
	}

	rec := attend()
	assertStatus(t, rec.Code, http.StatusSeeOther)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM attendees WHERE event_id = ?`, eventID).Scan(&n); err != nil {
		t.Fatalf("counting attendees: %v", err)
	}
	if n != 1 {
		t.Errorf("attendees = %d, want 1", n)
	}

	// Same email again is rejected but still redirects back.
	rec = attend()
	assertStatus(t, rec.Code, http.StatusSeeOther)
	if err := db.QueryRow(`SELECT COUNT(*) FROM attendees WHERE event_id = ?`, eventID).Scan(&n); err != nil {
		t.Fatalf("counting attendees: %v", err)
	}
	if n != 1 {
		t.Errorf("attendees after duplicate = %d, want still 1", n)
	}
}

func TestDeleteEvent(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewEventHandler(db, testLogger(), testRenderer(t, sm),
		imaging.NewProcessor(t.TempDir()), 2<<20)

	eventID := createTestEvent(t, db, "Doomed", time.Now().AddDate(0, 0, 3))
	idStr := strconv.FormatInt(eventID, 10)

	req := requestWithSession(sm, requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/events/"+idStr+"/delete", nil),
		map[string]string{"id": idStr}))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assertStatus(t, rec.Code, http.StatusSeeOther)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if n != 0 {
		t.Errorf("events after delete = %d, want 0", n)
	}
}
