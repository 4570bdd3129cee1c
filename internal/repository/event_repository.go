package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/campusbuzz/event-registration/internal/model"
)

// EventRepo provides data access to the `events` table and the
// event_registrations join table. Registration membership is a set: the
// composite primary key on (event_id, user_id) enforces uniqueness, and
// both mutations are single conditional statements so concurrent calls
// cannot produce duplicates or double-deletes.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

const eventColumns = "id,title,description,event_date,location,organizer,created_at,updated_at"

func scanEvent(row *sql.Row) (model.Event, error) {
	var ev model.Event
	err := row.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date,
		&ev.Location, &ev.Organizer, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Event{}, ErrEventNotFound
		}
		return model.Event{}, err
	}
	return ev, nil
}

// Create inserts an event and returns the stored record.
func (r *EventRepo) Create(ctx context.Context, ev model.Event) (model.Event, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO events (title, description, event_date, location, organizer) VALUES (?,?,?,?,?)",
		ev.Title, ev.Description, ev.Date.UTC(), ev.Location, ev.Organizer)
	if err != nil {
		return model.Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches an event without its registrants.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	return scanEvent(r.DB.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=? LIMIT 1", id))
}

// GetWithRegistrants fetches an event together with the name and email
// of every registered user.
func (r *EventRepo) GetWithRegistrants(ctx context.Context, id uint64) (model.Event, error) {
	ev, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	regs, err := r.registrantsFor(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	ev.Registrants = regs
	return ev, nil
}

// List returns all events ordered by date ascending, without
// registrants.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events ORDER BY event_date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date,
			&ev.Location, &ev.Organizer, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ListWithRegistrants returns all events ordered by date ascending with
// their registrants attached. Used by the admin dashboard listing.
func (r *EventRepo) ListWithRegistrants(ctx context.Context) ([]model.Event, error) {
	events, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		regs, err := r.registrantsFor(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Registrants = regs
	}
	return events, nil
}

func (r *EventRepo) registrantsFor(ctx context.Context, eventID uint64) ([]model.Registrant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.name, u.email
		 FROM event_registrations er JOIN users u ON u.id = er.user_id
		 WHERE er.event_id=? ORDER BY er.created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []model.Registrant{}
	for rows.Next() {
		var reg model.Registrant
		if err := rows.Scan(&reg.UserID, &reg.Name, &reg.Email); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// Update rewrites the mutable fields of an event. A missing row is
// reported as ErrEventNotFound; RowsAffected cannot be used for that
// check because a no-op update also affects zero rows.
func (r *EventRepo) Update(ctx context.Context, ev model.Event) (model.Event, error) {
	if _, err := r.GetByID(ctx, ev.ID); err != nil {
		return model.Event{}, err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE events SET title=?, description=?, event_date=?, location=?, organizer=? WHERE id=?",
		ev.Title, ev.Description, ev.Date.UTC(), ev.Location, ev.Organizer, ev.ID)
	if err != nil {
		return model.Event{}, err
	}
	return r.GetByID(ctx, ev.ID)
}

// Delete removes an event. Registrations go with it via the foreign-key
// cascade.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AddRegistration is the atomic add-if-absent for the (event, user)
// pair. INSERT IGNORE relies on the composite primary key: an existing
// pair affects zero rows, which maps to ErrAlreadyRegistered.
func (r *EventRepo) AddRegistration(ctx context.Context, eventID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO event_registrations (event_id, user_id) VALUES (?,?)",
		eventID, userID)
	if err != nil {
		// A foreign-key violation (1452) means the event or user row
		// is gone.
		if strings.Contains(strings.ToLower(err.Error()), "1452") {
			return ErrEventNotFound
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyRegistered
	}
	return nil
}

// RemoveRegistration is the atomic remove-if-present counterpart.
func (r *EventRepo) RemoveRegistration(ctx context.Context, eventID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM event_registrations WHERE event_id=? AND user_id=?",
		eventID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotRegistered
	}
	return nil
}

// IsRegistered reports whether the pair exists.
func (r *EventRepo) IsRegistered(ctx context.Context, eventID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM event_registrations WHERE event_id=? AND user_id=? LIMIT 1",
		eventID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
