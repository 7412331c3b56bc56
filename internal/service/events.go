// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusconnect/internal/model"
	"campusconnect/internal/store"
	"campusconnect/internal/util"
)

// EventService implements the event lifecycle: CRUD, attendee registration
// and retention of past events.
type EventService struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEventService creates an EventService.
func NewEventService(db *sql.DB, logger *slog.Logger) *EventService {
	return &EventService{db: db, logger: logger}
}

// EventParams holds the input for CreateEvent and UpdateEvent.
type EventParams struct {
	Title       string
	Category    string
	Date        time.Time
	TimeStr     string
	Location    string
	Description string
	Image       string
}

func (p *EventParams) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if p.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	return nil
}

// CreateEvent stores a new event. A missing image falls back to the
// placeholder, and the slug is derived from the title.
func (s *EventService) CreateEvent(ctx context.Context, params EventParams) (model.Event, error) {
	if err := params.validate(); err != nil {
		return model.Event{}, err
	}

	image := params.Image
	if image == "" {
		image = model.DefaultEventImage
	}

	now := time.Now()
	event, err := store.New(s.db).CreateEvent(ctx, store.CreateEventParams{
		Title:       params.Title,
		Slug:        util.Slugify(params.Title),
		Category:    params.Category,
		Date:        params.Date,
		TimeStr:     params.TimeStr,
		Location:    params.Location,
		Description: params.Description,
		Image:       image,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event created", "event_id", event.ID, "title", event.Title, "date", event.Date)
	return event, nil
}

// GetEvent returns an event by ID.
func (s *EventService) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	event, err := store.New(s.db).GetEventByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return event, err
}

// ListEvents returns events in date order, optionally filtered by a search
// term matched against title and description.
func (s *EventService) ListEvents(ctx context.Context, search string) ([]model.Event, error) {
	q := store.New(s.db)
	if strings.TrimSpace(search) == "" {
		return q.ListEvents(ctx)
	}
	return q.SearchEvents(ctx, strings.TrimSpace(search))
}

// UpdateEvent replaces an event's fields. An empty image keeps the current
// one.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, params EventParams) (model.Event, error) {
	if err := params.validate(); err != nil {
		return model.Event{}, err
	}

	q := store.New(s.db)
	current, err := q.GetEventByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("looking up event: %w", err)
	}

	image := params.Image
	if image == "" {
		image = current.Image
	}

	err = q.UpdateEvent(ctx, store.UpdateEventParams{
		Title:       params.Title,
		Slug:        util.Slugify(params.Title),
		Category:    params.Category,
		Date:        params.Date,
		TimeStr:     params.TimeStr,
		Location:    params.Location,
		Description: params.Description,
		Image:       image,
		UpdatedAt:   time.Now(),
		ID:          id,
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("updating event: %w", err)
	}

	s.logger.Info("event updated", "event_id", id, "title", params.Title)
	return q.GetEventByID(ctx, id)
}

// DeleteEvent removes an event and its attendees in one transaction. The
// attendee delete is explicit, like SweepPast, so the cascade does not depend
// on per-connection foreign key enforcement.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	q := store.New(s.db).WithTx(tx)

	if _, err := q.GetEventByID(ctx, id); errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("looking up event: %w", err)
	}

	if err := q.DeleteAttendeesByEvent(ctx, id); err != nil {
		return fmt.Errorf("deleting attendees: %w", err)
	}
	if err := q.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Info("event deleted", "event_id", id)
	return nil
}

// ListAttendees returns an event's registrations in order.
func (s *EventService) ListAttendees(ctx context.Context, eventID int64) ([]model.Attendee, error) {
	return store.New(s.db).ListAttendeesByEvent(ctx, eventID)
}

// RegisterAttendee records a registration for an event. Registering the same
// email twice for one event is refused.
func (s *EventService) RegisterAttendee(ctx context.Context, eventID int64, name, email string) (model.Attendee, error) {
	if strings.TrimSpace(name) == "" {
		return model.Attendee{}, &ValidationError{Field: "name", Message: "is required"}
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return model.Attendee{}, &ValidationError{Field: "email", Message: "must be a valid address"}
	}

	q := store.New(s.db)
	if _, err := q.GetEventByID(ctx, eventID); errors.Is(err, sql.ErrNoRows) {
		return model.Attendee{}, ErrNotFound
	} else if err != nil {
		return model.Attendee{}, fmt.Errorf("looking up event: %w", err)
	}

	exists, err := q.AttendeeExists(ctx, eventID, email)
	if err != nil {
		return model.Attendee{}, fmt.Errorf("checking registration: %w", err)
	}
	if exists {
		return model.Attendee{}, fmt.Errorf("registration for %q: %w", email, ErrDuplicate)
	}

	attendee, err := q.CreateAttendee(ctx, store.CreateAttendeeParams{
		EventID:   eventID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return model.Attendee{}, fmt.Errorf("creating registration: %w", err)
	}

	s.logger.Info("attendee registered", "event_id", eventID, "attendee_id", attendee.ID)
	return attendee, nil
}

// SweepPast deletes events dated strictly before the start of now's day,
// together with their attendees, in one transaction. It returns how many
// events were removed. Listing handlers call this before rendering so past
// events never appear; there is no background job for it.
func (s *EventService) SweepPast(ctx context.Context, now time.Time) (int64, error) {
	cutoff := model.DayStart(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	q := store.New(s.db).WithTx(tx)

	if err := q.DeleteAttendeesForPastEvents(ctx, cutoff); err != nil {
		return 0, fmt.Errorf("deleting past attendees: %w", err)
	}
	deleted, err := q.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting past events: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("swept past events", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}
