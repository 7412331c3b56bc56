package store

import (
	"context"
	"time"

	"campusconnect/internal/model"
)

const eventColumns = `id, title, slug, category, date, time_str, location, description, image, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Category, &e.Date, &e.TimeStr,
		&e.Location, &e.Description, &e.Image, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func collectEvents(q *Queries, ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Title       string
	Slug        string
	Category    string
	Date        time.Time
	TimeStr     string
	Location    string
	Description string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateEvent inserts a new event and returns it with its assigned ID.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (title, slug, category, date, time_str, location, description, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, nullIfEmpty(arg.Category), arg.Date, nullIfEmpty(arg.TimeStr),
		nullIfEmpty(arg.Location), nullIfEmpty(arg.Description), arg.Image, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}
	return q.GetEventByID(ctx, id)
}

// GetEventByID returns the event with the given ID.
func (q *Queries) GetEventByID(ctx context.Context, id int64) (model.Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
}

// ListEvents returns all events ordered by date ascending.
func (q *Queries) ListEvents(ctx context.Context) ([]model.Event, error) {
	return collectEvents(q, ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`)
}

// SearchEvents returns events whose title or description contains the given
// term, ordered by date ascending. An empty term matches everything.
func (q *Queries) SearchEvents(ctx context.Context, term string) ([]model.Event, error) {
	return collectEvents(q, ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE title LIKE '%' || ? || '%' OR ifnull(description, '') LIKE '%' || ? || '%'
		 ORDER BY date ASC, id ASC`, term, term)
}

// UpdateEventParams holds the fields for UpdateEvent.
type UpdateEventParams struct {
	Title       string
	Slug        string
	Category    string
	Date        time.Time
	TimeStr     string
	Location    string
	Description string
	Image       string
	UpdatedAt   time.Time
	ID          int64
}

// UpdateEvent replaces all mutable fields of an event.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE events SET title = ?, slug = ?, category = ?, date = ?, time_str = ?,
		 location = ?, description = ?, image = ?, updated_at = ? WHERE id = ?`,
		arg.Title, arg.Slug, nullIfEmpty(arg.Category), arg.Date, nullIfEmpty(arg.TimeStr),
		nullIfEmpty(arg.Location), nullIfEmpty(arg.Description), arg.Image, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteEvent removes an event row. Callers remove the attendee rows in the
// same transaction; the ON DELETE CASCADE clause is a backstop.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

// CountEvents returns the total number of events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// DeleteAttendeesForPastEvents removes attendee rows belonging to events dated
// strictly before the cutoff. Run inside the same transaction as
// DeleteEventsBefore so the cascade is explicit even without foreign key
// enforcement.
func (q *Queries) DeleteAttendeesForPastEvents(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM attendees WHERE event_id IN (SELECT id FROM events WHERE date < ?)`, cutoff)
	return err
}

// DeleteEventsBefore removes events dated strictly before the cutoff and
// returns how many were deleted.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE date < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
