package handler

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"campusconnect/internal/auth"
	"campusconnect/internal/middleware"
	"campusconnect/internal/model"
	"campusconnect/internal/render"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'attendee',
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		);
		CREATE INDEX idx_users_username ON users(username);
		CREATE INDEX idx_users_role ON users(role);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			slug TEXT NOT NULL DEFAULT '',
			category TEXT,
			date DATETIME NOT NULL,
			time_str TEXT,
			location TEXT,
			description TEXT,
			image TEXT NOT NULL DEFAULT 'images/event-placeholder.jpg',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_events_date ON events(date);

		CREATE TABLE attendees (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		);
		CREATE INDEX idx_attendees_event_id ON attendees(event_id);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX idx_sessions_expiry ON sessions(expiry);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer creates a renderer with minimal templates covering every page
// name the handlers use.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	base := &fstest.MapFile{
		Data: []byte(`{{define "base"}}{{.Title}}|{{.Flash}}{{template "content" .}}{{end}}`),
	}
	page := &fstest.MapFile{Data: []byte(`{{define "content"}}{{end}}`)}

	fsys := fstest.MapFS{
		"layouts/base.html":       base,
		"pages/index.html":        page,
		"pages/calendar.html":     page,
		"pages/event_detail.html": page,
		"pages/event_form.html":   page,
		"pages/login.html":        page,
		"pages/register.html":     page,
		"pages/admin_users.html":  page,
	}

	r, err := render.New(render.Config{TemplatesFS: fsys, SessionManager: sm})
	if err != nil {
		t.Fatalf("creating test renderer: %v", err)
	}
	return r
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testUser describes a user to create for a test.
type testUser struct {
	Username string
	Email    string
	Role     string
	IsAdmin  bool
	Password string
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *sql.DB, user testUser) model.User {
	t.Helper()

	password := user.Password
	if password == "" {
		password = "password123"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}

	now := time.Now()
	result, err := db.Exec(
		`INSERT INTO users (username, email, password_hash, role, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, hash, user.Role, user.IsAdmin, now, now,
	)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	id, _ := result.LastInsertId()
	return model.User{
		ID:           id,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: hash,
		Role:         user.Role,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// createTestEvent inserts an event directly.
func createTestEvent(t *testing.T, db *sql.DB, title string, date time.Time) int64 {
	t.Helper()

	now := time.Now()
	result, err := db.Exec(
		`INSERT INTO events (title, slug, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		title, title, date, now, now,
	)
	if err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithUser places a user into the request context the way LoadUser does.
func requestWithUser(r *http.Request, user model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
