// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// DefaultEventImage is the placeholder shown for events without an upload.
const DefaultEventImage = "images/event-placeholder.jpg"

// Event represents a campus event. Date carries day granularity; TimeStr is a
// free-form display string ("18:30") because the source data never needed a
// parsed time of day.
type Event struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Category    sql.NullString `json:"category,omitempty"`
	Date        time.Time      `json:"date"`
	TimeStr     sql.NullString `json:"time_str,omitempty"`
	Location    sql.NullString `json:"location,omitempty"`
	Description sql.NullString `json:"description,omitempty"`
	Image       string         `json:"image"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsPast reports whether the event's date is strictly before the day of now.
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(DayStart(now))
}

// DayStart returns midnight at the start of t's day in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Attendee is a public registration for an event. Attendees are owned by
// their event and removed with it.
type Attendee struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
