// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusconnect/internal/auth"
	"campusconnect/internal/model"
	"campusconnect/internal/store"
)

// UserService implements account registration, authentication and the role
// lifecycle.
type UserService struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(db *sql.DB, logger *slog.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// RegisterParams holds the input for Register.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

func (p *RegisterParams) validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return &ValidationError{Field: "username", Message: "is required"}
	}
	if strings.TrimSpace(p.Email) == "" || !strings.Contains(p.Email, "@") {
		return &ValidationError{Field: "email", Message: "must be a valid address"}
	}
	if len(p.Password) < 8 {
		return &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	return nil
}

// Register creates a new account. The first account ever created becomes an
// admin; everyone after starts as an attendee. The count check and insert run
// in one transaction so two concurrent first registrations cannot both
// bootstrap.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (model.User, error) {
	if err := params.validate(); err != nil {
		return model.User{}, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	q := store.New(s.db).WithTx(tx)

	if _, err := q.GetUserByUsername(ctx, params.Username); err == nil {
		return model.User{}, fmt.Errorf("username %q: %w", params.Username, ErrDuplicate)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("checking username: %w", err)
	}
	if _, err := q.GetUserByEmail(ctx, params.Email); err == nil {
		return model.User{}, fmt.Errorf("email %q: %w", params.Email, ErrDuplicate)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}

	count, err := q.CountUsers(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("counting users: %w", err)
	}

	role := model.RoleAttendee
	isAdmin := false
	if count == 0 {
		role = model.RoleAdmin
		isAdmin = true
	}

	now := time.Now()
	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         role,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.User{}, fmt.Errorf("committing transaction: %w", err)
	}

	if isAdmin {
		s.logger.Info("first account registered as admin", "user_id", user.ID, "username", user.Username)
	} else {
		s.logger.Info("account registered", "user_id", user.ID, "username", user.Username)
	}
	return user, nil
}

// Authenticate verifies a username/password pair. The username match is
// exact, including case. Failures return ErrUnauthorized regardless of
// whether the username or the password was wrong.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	q := store.New(s.db)

	user, err := q.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		// Burn a hash comparison anyway to keep timing uniform.
		_, _ = auth.CheckPassword(password, "")
		return model.User{}, ErrUnauthorized
	}
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return model.User{}, ErrUnauthorized
	}

	// Upgrade hashes written with older parameters while we hold the
	// plaintext. Best effort; login succeeds either way.
	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			err := q.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			})
			if err != nil {
				s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	if err := q.UpdateUserLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("recording last login failed", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (model.User, error) {
	user, err := store.New(s.db).GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

// ListUsers returns all accounts ordered by username.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return store.New(s.db).ListUsers(ctx)
}

// SetRole changes a user's role on behalf of an acting admin. Demoting the
// last account whose role column is admin is refused; accounts that are admin
// only through the legacy flag do not count toward that guard. Promoting to
// admin also sets the legacy flag, and demoting clears it, so the two fields
// stay reconciled.
func (s *UserService) SetRole(ctx context.Context, actorID, userID int64, role string) (model.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	q := store.New(s.db).WithTx(tx)

	actor, err := q.GetUserByID(ctx, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUnauthorized
	}
	if err != nil {
		return model.User{}, fmt.Errorf("looking up actor: %w", err)
	}
	if !actor.IsAdminUser() {
		return model.User{}, ErrUnauthorized
	}

	if !model.IsValidRole(role) {
		return model.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	user, err := q.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	if user.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := q.CountUsersByRole(ctx, model.RoleAdmin)
		if err != nil {
			return model.User{}, fmt.Errorf("counting admins: %w", err)
		}
		if admins <= 1 {
			return model.User{}, ErrLastAdmin
		}
	}

	err = q.UpdateUserRole(ctx, store.UpdateUserRoleParams{
		Role:      role,
		IsAdmin:   role == model.RoleAdmin,
		UpdatedAt: time.Now(),
		ID:        userID,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("updating role: %w", err)
	}

	updated, err := q.GetUserByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("reloading user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.User{}, fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Info("role changed",
		"actor_id", actorID, "user_id", userID, "username", updated.Username,
		"from", user.Role, "to", role)
	return updated, nil
}
