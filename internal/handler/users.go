// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"campusconnect/internal/middleware"
	"campusconnect/internal/render"
	"campusconnect/internal/service"
)

// UserHandler handles the admin user management pages.
type UserHandler struct {
	users    *service.UserService
	renderer *render.Renderer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *sql.DB, logger *slog.Logger, renderer *render.Renderer) *UserHandler {
	return &UserHandler{
		users:    service.NewUserService(db, logger),
		renderer: renderer,
	}
}

// List renders all accounts with their roles.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "listing users", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Manage Users",
		User:  middleware.GetUser(r),
		Data:  map[string]any{"Users": users},
	}
	if err := h.renderer.Render(w, r, "admin_users", data); err != nil {
		logAndInternalError(w, "rendering user list", "error", err)
	}
}

// SetRole changes an account's role from the user list form.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, RouteAdminUsers) {
		return
	}

	actor := middleware.GetUser(r)
	if actor == nil {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}

	role := r.FormValue("role")
	updated, err := h.users.SetRole(r.Context(), actor.ID, id, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			flashError(w, r, h.renderer, RouteRoot, "You need admin access for that.")
		case errors.Is(err, service.ErrInvalidRole):
			flashError(w, r, h.renderer, RouteAdminUsers, "Unknown role: "+role)
		case errors.Is(err, service.ErrLastAdmin):
			flashError(w, r, h.renderer, RouteAdminUsers, "Cannot demote the last admin")
		case errors.Is(err, service.ErrNotFound):
			flashError(w, r, h.renderer, RouteAdminUsers, "User not found")
		default:
			slog.Error("setting role", "error", err, "user_id", id)
			flashError(w, r, h.renderer, RouteAdminUsers, "Could not change the role")
		}
		return
	}

	flashSuccess(w, r, h.renderer, RouteAdminUsers,
		updated.Username+" is now "+updated.Role)
}
