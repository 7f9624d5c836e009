package events

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"arc-backend/internal/platform/apierr"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) InsertLocation(ctx context.Context, l *Location) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (name, address, capacity) VALUES (?, ?, ?)`,
		l.Name, l.Address, l.Capacity)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	l.LocationID = id
	return nil
}

func (s *Store) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT location_id, name, address, capacity FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.LocationID, &l.Name, &l.Address, &l.Capacity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) LocationExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM locations WHERE location_id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) InsertEvent(ctx context.Context, e *Event) error {
	const q = `
INSERT INTO events (name, event_date, location_id, notes, created_at)
VALUES (?, ?, ?, ?, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, e.Name, e.EventDate, e.LocationID, e.Notes)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.EventID = id
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id int64) (*Event, error) {
	const q = `SELECT event_id, name, event_date, location_id, notes, created_at FROM events WHERE event_id = ?`
	var e Event
	err := s.db.QueryRowContext(ctx, q, id).Scan(&e.EventID, &e.Name, &e.EventDate, &e.LocationID, &e.Notes, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListEvents(ctx context.Context, limit, offset int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, name, event_date, location_id, notes, created_at FROM events ORDER BY event_date DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.EventID, &e.Name, &e.EventDate, &e.LocationID, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) UpdateEvent(ctx context.Context, id int64, sets []string, args []any) error {
	if len(sets) == 0 {
		return nil
	}
	q := `UPDATE events SET ` + strings.Join(sets, ", ") + ` WHERE event_id = ?`
	args = append(args, id)
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) DeleteEvent(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
