// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP handlers for the CampusConnect web UI.
package handler

// Route paths shared across handlers and redirects.
const (
	RouteRoot       = "/"
	RouteCalendar   = "/calendar"
	RouteLogin      = "/login"
	RouteRegister   = "/register"
	RouteLogout     = "/logout"
	RouteEventNew   = "/events/new"
	RouteAdminUsers = "/admin/users"
)
