// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestEvent_IsPast(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	yesterday := Event{Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)}
	today := Event{Date: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)}
	tomorrow := Event{Date: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)}

	if !yesterday.IsPast(now) {
		t.Error("yesterday's event should be past")
	}
	if today.IsPast(now) {
		t.Error("today's event should not be past, even mid-afternoon")
	}
	if tomorrow.IsPast(now) {
		t.Error("tomorrow's event should not be past")
	}
}

func TestDayStart(t *testing.T) {
	ts := time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	if got := DayStart(ts); !got.Equal(want) {
		t.Errorf("DayStart(%v) = %v; want %v", ts, got, want)
	}
}
