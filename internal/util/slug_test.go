// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Welcome Week Mixer", "welcome-week-mixer"},
		{"Café & Conversation", "cafe-conversation"},
		{"  Spring   Gala!  ", "spring-gala"},
		{"Intro to Gophers (Level 1)", "intro-to-gophers-level-1"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("event ", 30)
	got := Slugify(long)
	if len(got) > maxSlugLength {
		t.Errorf("Slugify returned %d chars, want <= %d", len(got), maxSlugLength)
	}
	if !IsValidSlug(got) {
		t.Errorf("truncated slug %q is not valid", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"spring-gala", "event-2026", "a"}
	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "-lead", "trail-", "two--hyphens", "UpperCase", "with space"}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}
