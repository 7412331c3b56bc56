package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"campusconnect/internal/auth"
	"campusconnect/internal/model"
)

// Default admin credentials
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "password"
)

// Seed creates initial data in an empty database: a default admin account and
// a handful of upcoming sample events. It is a no-op when any users exist.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	count, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		slog.Info("users already exist, skipping seed")
		return nil
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAdminUsername,
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"username", user.Username,
		"password", DefaultAdminPassword,
	)

	samples := []CreateEventParams{
		{
			Title:       "Welcome Week Mixer",
			Slug:        "welcome-week-mixer",
			Category:    "Social",
			Date:        model.DayStart(now).AddDate(0, 0, 7),
			TimeStr:     "18:00",
			Location:    "Student Union Hall",
			Description: "Kick off the semester and meet students from every department.",
			Image:       model.DefaultEventImage,
		},
		{
			Title:       "Intro to Research Talks",
			Slug:        "intro-to-research-talks",
			Category:    "Academic",
			Date:        model.DayStart(now).AddDate(0, 0, 14),
			TimeStr:     "14:00",
			Location:    "Lecture Hall B",
			Description: "Faculty present open research projects looking for undergraduate assistants.",
			Image:       model.DefaultEventImage,
		},
		{
			Title:       "Campus 5K Fun Run",
			Slug:        "campus-5k-fun-run",
			Category:    "Sports",
			Date:        model.DayStart(now).AddDate(0, 0, 21),
			TimeStr:     "09:00",
			Location:    "Athletics Track",
			Description: "All paces welcome. Registration opens an hour before the start.",
			Image:       model.DefaultEventImage,
		},
	}
	for _, s := range samples {
		s.CreatedAt = now
		s.UpdatedAt = now
		if _, err := queries.CreateEvent(ctx, s); err != nil {
			return fmt.Errorf("creating sample event %q: %w", s.Title, err)
		}
	}

	slog.Info("seeded sample events", "count", len(samples))
	return nil
}
