// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when credentials do not match a user.
	ErrUnauthorized = errors.New("invalid username or password")

	// ErrInvalidRole is returned when a role value is not one of the
	// known roles.
	ErrInvalidRole = errors.New("invalid role")

	// ErrLastAdmin is returned when a role change would leave the system
	// with no admin-role account.
	ErrLastAdmin = errors.New("cannot demote the last admin")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("already exists")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
