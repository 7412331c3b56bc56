// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"campusconnect/internal/imaging"
	"campusconnect/internal/middleware"
	"campusconnect/internal/model"
	"campusconnect/internal/render"
	"campusconnect/internal/service"
)

// EventHandler handles event listing, detail, management and registration.
type EventHandler struct {
	events         *service.EventService
	renderer       *render.Renderer
	processor      *imaging.Processor
	maxUploadBytes int64
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(db *sql.DB, logger *slog.Logger, renderer *render.Renderer, processor *imaging.Processor, maxUploadBytes int64) *EventHandler {
	return &EventHandler{
		events:         service.NewEventService(db, logger),
		renderer:       renderer,
		processor:      processor,
		maxUploadBytes: maxUploadBytes,
	}
}

// dayGroup is one calendar day and its events.
type dayGroup struct {
	Day    time.Time
	Events []model.Event
}

// sweep removes past events before any listing renders. Retention is
// enforced on read; failures must not take the page down.
func (h *EventHandler) sweep(r *http.Request) {
	if _, err := h.events.SweepPast(r.Context(), time.Now()); err != nil {
		slog.Error("sweeping past events failed", "error", err)
	}
}

// Index renders the home page: upcoming events, optionally filtered by ?q=.
func (h *EventHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.sweep(r)

	query := r.URL.Query().Get("q")
	events, err := h.events.ListEvents(r.Context(), query)
	if err != nil {
		logAndInternalError(w, "listing events", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Upcoming Events",
		User:  middleware.GetUser(r),
		Data: map[string]any{
			"Events": events,
			"Query":  query,
		},
	}
	if err := h.renderer.Render(w, r, "index", data); err != nil {
		logAndInternalError(w, "rendering index", "error", err)
	}
}

// Calendar renders events grouped by day.
func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	h.sweep(r)

	events, err := h.events.ListEvents(r.Context(), "")
	if err != nil {
		logAndInternalError(w, "listing events", "error", err)
		return
	}

	// Events arrive date-ordered, so grouping preserves order.
	var groups []dayGroup
	for _, e := range events {
		day := model.DayStart(e.Date)
		if len(groups) == 0 || !groups[len(groups)-1].Day.Equal(day) {
			groups = append(groups, dayGroup{Day: day})
		}
		groups[len(groups)-1].Events = append(groups[len(groups)-1].Events, e)
	}

	data := render.TemplateData{
		Title: "Calendar",
		User:  middleware.GetUser(r),
		Data:  map[string]any{"Days": groups},
	}
	if err := h.renderer.Render(w, r, "calendar", data); err != nil {
		logAndInternalError(w, "rendering calendar", "error", err)
	}
}

// Detail renders a single event with its attendee list.
func (h *EventHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	event, err := h.events.GetEvent(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		flashError(w, r, h.renderer, RouteRoot, "Event not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "loading event", "error", err, "event_id", id)
		return
	}

	attendees, err := h.events.ListAttendees(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "loading attendees", "error", err, "event_id", id)
		return
	}

	data := render.TemplateData{
		Title: event.Title,
		User:  middleware.GetUser(r),
		Data: map[string]any{
			"Event":     event,
			"Attendees": attendees,
		},
	}
	if err := h.renderer.Render(w, r, "event_detail", data); err != nil {
		logAndInternalError(w, "rendering event detail", "error", err)
	}
}

// NewForm renders the event creation form.
func (h *EventHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{
		Title: "New Event",
		User:  middleware.GetUser(r),
		Data:  map[string]any{"Event": model.Event{}, "IsNew": true},
	}
	if err := h.renderer.Render(w, r, "event_form", data); err != nil {
		logAndInternalError(w, "rendering event form", "error", err)
	}
}

// Create handles event creation, including an optional poster upload.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseEventForm(w, r, RouteEventNew)
	if !ok {
		return
	}

	event, err := h.events.CreateEvent(r.Context(), params)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			flashError(w, r, h.renderer, RouteEventNew, "Could not create event: "+verr.Error())
			return
		}
		logAndInternalError(w, "creating event", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, eventURL(event.ID), "Event created")
}

// EditForm renders the edit form for an event.
func (h *EventHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	event, err := h.events.GetEvent(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		flashError(w, r, h.renderer, RouteRoot, "Event not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "loading event", "error", err, "event_id", id)
		return
	}

	data := render.TemplateData{
		Title: "Edit " + event.Title,
		User:  middleware.GetUser(r),
		Data:  map[string]any{"Event": event, "IsNew": false},
	}
	if err := h.renderer.Render(w, r, "event_form", data); err != nil {
		logAndInternalError(w, "rendering event form", "error", err)
	}
}

// Update handles the edit form submission.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	params, ok := h.parseEventForm(w, r, eventURL(id)+"/edit")
	if !ok {
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), id, params)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			flashError(w, r, h.renderer, eventURL(id)+"/edit", "Could not update event: "+verr.Error())
		case errors.Is(err, service.ErrNotFound):
			flashError(w, r, h.renderer, RouteRoot, "Event not found")
		default:
			logAndInternalError(w, "updating event", "error", err, "event_id", id)
		}
		return
	}

	flashSuccess(w, r, h.renderer, eventURL(event.ID), "Event updated")
}

// Delete removes an event and its registrations.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.events.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			flashError(w, r, h.renderer, RouteRoot, "Event not found")
			return
		}
		logAndInternalError(w, "deleting event", "error", err, "event_id", id)
		return
	}

	flashSuccess(w, r, h.renderer, RouteRoot, "Event deleted")
}

// Attend records an attendee registration from the event detail page.
func (h *EventHandler) Attend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, eventURL(id)) {
		return
	}

	_, err := h.events.RegisterAttendee(r.Context(), id, r.FormValue("name"), r.FormValue("email"))
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			flashError(w, r, h.renderer, eventURL(id), "Registration failed: "+verr.Error())
		case errors.Is(err, service.ErrDuplicate):
			flashError(w, r, h.renderer, eventURL(id), "That email is already registered for this event")
		case errors.Is(err, service.ErrNotFound):
			flashError(w, r, h.renderer, RouteRoot, "Event not found")
		default:
			logAndInternalError(w, "registering attendee", "error", err, "event_id", id)
		}
		return
	}

	flashSuccess(w, r, h.renderer, eventURL(id), "You're registered. See you there!")
}

// parseEventForm reads the multipart event form, processing a poster upload
// when one was provided. Returns false if a response was already written.
func (h *EventHandler) parseEventForm(w http.ResponseWriter, r *http.Request, redirectURL string) (service.EventParams, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		flashError(w, r, h.renderer, redirectURL, "Upload too large or form invalid")
		return service.EventParams{}, false
	}

	var date time.Time
	if raw := r.FormValue("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			flashError(w, r, h.renderer, redirectURL, "Date must be in YYYY-MM-DD format")
			return service.EventParams{}, false
		}
		date = parsed
	}

	params := service.EventParams{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		Date:        date,
		TimeStr:     r.FormValue("time"),
		Location:    r.FormValue("location"),
		Description: r.FormValue("description"),
	}

	file, _, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		result, err := h.processor.ProcessPoster(file)
		if err != nil {
			flashError(w, r, h.renderer, redirectURL, "Could not process the image upload")
			return service.EventParams{}, false
		}
		params.Image = "uploads/" + result.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		flashError(w, r, h.renderer, redirectURL, "Could not read the image upload")
		return service.EventParams{}, false
	}

	return params, true
}

func eventURL(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}
