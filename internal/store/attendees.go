package store

import (
	"context"
	"time"

	"campusconnect/internal/model"
)

// CreateAttendeeParams holds the fields for CreateAttendee.
type CreateAttendeeParams struct {
	EventID   int64
	Name      string
	Email     string
	CreatedAt time.Time
}

// CreateAttendee records a registration for an event.
func (q *Queries) CreateAttendee(ctx context.Context, arg CreateAttendeeParams) (model.Attendee, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO attendees (event_id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		arg.EventID, arg.Name, arg.Email, arg.CreatedAt)
	if err != nil {
		return model.Attendee{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Attendee{}, err
	}
	return model.Attendee{
		ID:        id,
		EventID:   arg.EventID,
		Name:      arg.Name,
		Email:     arg.Email,
		CreatedAt: arg.CreatedAt,
	}, nil
}

// ListAttendeesByEvent returns an event's attendees in registration order.
func (q *Queries) ListAttendeesByEvent(ctx context.Context, eventID int64) ([]model.Attendee, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, event_id, name, email, created_at FROM attendees WHERE event_id = ? ORDER BY id ASC`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.CreatedAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// DeleteAttendeesByEvent removes every registration for one event. Run inside
// the same transaction as DeleteEvent so the cascade is explicit even without
// foreign key enforcement.
func (q *Queries) DeleteAttendeesByEvent(ctx context.Context, eventID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM attendees WHERE event_id = ?`, eventID)
	return err
}

// CountAttendeesByEvent returns the number of registrations for an event.
func (q *Queries) CountAttendeesByEvent(ctx context.Context, eventID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendees WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// AttendeeExists reports whether the given email is already registered for the event.
func (q *Queries) AttendeeExists(ctx context.Context, eventID int64, email string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendees WHERE event_id = ? AND email = ?`, eventID, email).Scan(&n)
	return n > 0, err
}
