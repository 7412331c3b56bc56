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

	"github.com/alexedwards/scs/v2"

	"campusconnect/internal/middleware"
	"campusconnect/internal/model"
	"campusconnect/internal/render"
	"campusconnect/internal/service"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users           *service.UserService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, logger *slog.Logger, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		users:           service.NewUserService(db, logger),
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID) > 0 {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "register", render.TemplateData{Title: "Register"}); err != nil {
		logAndInternalError(w, "rendering register page", "error", err)
	}
}

// Register handles the registration form submission. The first registered
// account becomes the admin.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRegister) {
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterParams{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			flashError(w, r, h.renderer, RouteRegister, "Registration failed: "+verr.Error())
		case errors.Is(err, service.ErrDuplicate):
			flashError(w, r, h.renderer, RouteRegister, "That username or email is already taken")
		default:
			slog.Error("registration failed", "error", err)
			flashError(w, r, h.renderer, RouteRegister, "Registration failed, please try again")
		}
		return
	}

	// Log the new account straight in.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	flashSuccess(w, r, h.renderer, RouteRoot, fmt.Sprintf("Welcome, %s!", user.Username))
}

// LoginForm renders the login page, bouncing already-authenticated users home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID) > 0 {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "login", render.TemplateData{Title: "Log in"}); err != nil {
		logAndInternalError(w, "rendering login page", "error", err)
	}
}

// Login handles the login form submission. Usernames match exactly,
// including case.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteLogin) {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		flashError(w, r, h.renderer, RouteLogin, "Username and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
			flashError(w, r, h.renderer, RouteLogin,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			slog.Error("login error", "error", err)
		}
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
				flashError(w, r, h.renderer, RouteLogin,
					fmt.Sprintf("Too many failed attempts. Locked for %s.", formatDuration(lockDuration)))
				return
			}
		}
		flashError(w, r, h.renderer, RouteLogin, "Invalid username or password")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(username)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)

	if user.EffectiveRole() == model.RoleAdmin {
		flashAndRedirect(w, r, h.renderer, RouteAdminUsers,
			fmt.Sprintf("Welcome back, %s!", user.Username), "success")
		return
	}
	flashSuccess(w, r, h.renderer, RouteRoot, fmt.Sprintf("Welcome back, %s!", user.Username))
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}
	slog.Info("user logged out", "user_id", userID)

	flashAndRedirect(w, r, h.renderer, RouteLogin, "You have been logged out.", "info")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
