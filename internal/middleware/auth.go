// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, CSRF protection and login rate limiting.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"campusconnect/internal/model"
	"campusconnect/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser carries the authenticated user through the request context.
const ContextKeyUser ContextKey = "user"

// Session keys for stored user data and flash messages.
const (
	SessionKeyUserID    = "user_id"
	SessionKeyFlash     = "flash"
	SessionKeyFlashType = "flash_type"
)

func denyWithFlash(sm *scs.SessionManager, w http.ResponseWriter, r *http.Request, url, message string) {
	sm.Put(r.Context(), SessionKeyFlash, message)
	sm.Put(r.Context(), SessionKeyFlashType, "error")
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// RequireLogin requires an authenticated session and redirects to the login
// page with a flash message otherwise.
func RequireLogin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetInt64(r.Context(), SessionKeyUserID) == 0 {
				denyWithFlash(sm, w, r, "/login", "Please log in to continue.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser loads the session's user into the request context. A session
// pointing at a deleted user is destroyed and sent back to login. Use after
// RequireLogin.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalLoadUser loads the session's user into context when present but
// never redirects. Use on public routes where the navbar needs the user.
func OptionalLoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// RequireOrganizer allows organizers and admins through. Everyone else is
// sent home with a flash message; anonymous requests go to login.
func RequireOrganizer(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return requireRole(sm, func(u *model.User) bool { return u.CanManageEvents() },
		"You need organizer access for that.")
}

// RequireAdmin allows admins only, counting the legacy admin flag.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return requireRole(sm, func(u *model.User) bool { return u.IsAdminUser() },
		"You need admin access for that.")
}

func requireRole(sm *scs.SessionManager, allowed func(*model.User) bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				denyWithFlash(sm, w, r, "/login", "Please log in to continue.")
				return
			}

			if !allowed(user) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.EffectiveRole(),
					"remote_addr", r.RemoteAddr,
				)
				denyWithFlash(sm, w, r, "/", message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
