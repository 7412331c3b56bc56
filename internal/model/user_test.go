// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role  string
		valid bool
	}{
		{"attendee", true},
		{"organizer", true},
		{"admin", true},
		{"", false},
		{"editor", false},
		{"Admin", false},
		{"ADMIN", false},
		{"superadmin", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsValidRole(tt.role); got != tt.valid {
				t.Errorf("IsValidRole(%q) = %v; want %v", tt.role, got, tt.valid)
			}
		})
	}
}

func TestUser_EffectiveRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		isAdmin bool
		want    string
	}{
		{"plain attendee", RoleAttendee, false, RoleAttendee},
		{"plain organizer", RoleOrganizer, false, RoleOrganizer},
		{"role admin", RoleAdmin, false, RoleAdmin},
		{"legacy flag only", RoleAttendee, true, RoleAdmin},
		{"legacy flag on organizer", RoleOrganizer, true, RoleAdmin},
		{"both set", RoleAdmin, true, RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{Role: tt.role, IsAdmin: tt.isAdmin}
			if got := u.EffectiveRole(); got != tt.want {
				t.Errorf("EffectiveRole() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestUser_Predicates(t *testing.T) {
	attendee := User{Role: RoleAttendee}
	organizer := User{Role: RoleOrganizer}
	admin := User{Role: RoleAdmin}
	legacyAdmin := User{Role: RoleAttendee, IsAdmin: true}

	if attendee.CanManageEvents() {
		t.Error("attendee should not manage events")
	}
	if !organizer.CanManageEvents() {
		t.Error("organizer should manage events")
	}
	if !admin.CanManageEvents() {
		t.Error("admin should manage events")
	}
	if !legacyAdmin.CanManageEvents() {
		t.Error("legacy-flag admin should manage events")
	}

	if organizer.CanDeleteEvents() {
		t.Error("organizer should not delete events")
	}
	if !admin.CanDeleteEvents() {
		t.Error("admin should delete events")
	}

	if organizer.CanManageUsers() {
		t.Error("organizer should not manage users")
	}
	if !legacyAdmin.CanManageUsers() {
		t.Error("legacy-flag admin should manage users")
	}
}
