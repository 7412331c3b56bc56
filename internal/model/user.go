// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application, including User, Event and Attendee.
package model

import (
	"database/sql"
	"time"
)

// User roles. The set is closed: every user carries exactly one of these.
const (
	RoleAttendee  = "attendee"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleAttendee, RoleOrganizer, RoleAdmin}

// IsValidRole reports whether role is in the closed role set.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a registered account.
//
// Role is the source of truth for authorization. IsAdmin is a legacy column
// retained for backward compatibility with databases written before the role
// column existed; it is kept in sync on every role write and only ever read
// through EffectiveRole.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	IsAdmin      bool         `json:"is_admin"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// EffectiveRole returns the role used for authorization decisions,
// reconciling the role column with the legacy admin flag.
func (u *User) EffectiveRole() string {
	if u.Role == RoleAdmin || u.IsAdmin {
		return RoleAdmin
	}
	return u.Role
}

// IsAdminUser returns true if the user has effective admin rights.
func (u *User) IsAdminUser() bool {
	return u.EffectiveRole() == RoleAdmin
}

// CanManageEvents returns true if the user may create and edit events.
func (u *User) CanManageEvents() bool {
	role := u.EffectiveRole()
	return role == RoleOrganizer || role == RoleAdmin
}

// CanDeleteEvents returns true if the user may delete events.
func (u *User) CanDeleteEvents() bool {
	return u.IsAdminUser()
}

// CanManageUsers returns true if the user may change other users' roles.
func (u *User) CanManageUsers() bool {
	return u.IsAdminUser()
}
