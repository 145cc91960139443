package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const eventColumns = `id, title, date, time, duration, description, color, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (*Event, error) {
	e := &Event{}
	var date, createdAt, updatedAt string
	var clock, description sql.NullString
	if err := r.Scan(&e.ID, &e.Title, &date, &clock, &e.Duration, &description, &e.Color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Date, _ = time.Parse(DateLayout, date)
	if clock.Valid {
		e.Time = &clock.String
	}
	if description.Valid {
		e.Description = &description.String
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func (s *Store) Create(ctx context.Context, f EventFields) (*Event, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (title, date, time, duration, description, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Title, f.Date.Format(DateLayout), f.Time, f.Duration, f.Description, f.Color, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return e, nil
}

// Update replaces every mutable field of event id.
func (s *Store) Update(ctx context.Context, id int64, f EventFields) (*Event, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET title = ?, date = ?, time = ?, duration = ?, description = ?, color = ?, updated_at = ?
		 WHERE id = ?`,
		f.Title, f.Date.Format(DateLayout), f.Time, f.Duration, f.Description, f.Color, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("update event %d: %w", id, ErrNotFound)
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete event %d: %w", id, ErrNotFound)
	}
	return nil
}

// List returns events ordered by date, then time with untimed events first,
// then id.
func (s *Store) List(ctx context.Context, f EventFilter) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	var args []any

	if f.From != nil && f.To != nil {
		query += ` AND date >= ? AND date <= ?`
		args = append(args, f.From.Format(DateLayout), f.To.Format(DateLayout))
	}
	query += ` ORDER BY date, time, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
