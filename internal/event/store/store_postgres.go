package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gatepass/internal/event"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// PostgresStore persists events and event days in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateEvent(ctx context.Context, e event.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, starts_at, ends_at, venue, visibility, fee_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	`, e.ID.String(), e.Title, e.StartsAt, e.EndsAt, e.Venue, string(e.Visibility), e.FeeCents, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindEvent(ctx context.Context, id domain.EventID) (event.Event, error) {
	var (
		e          event.Event
		eid        string
		visibility sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, starts_at, ends_at, venue, COALESCE(visibility, ''), fee_cents, created_at
		FROM events WHERE id = $1
	`, id.String()).Scan(&eid, &e.Title, &e.StartsAt, &e.EndsAt, &e.Venue, &visibility, &e.FeeCents, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, sentinel.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("find event: %w", err)
	}
	parsed, err := domain.ParseEventID(eid)
	if err != nil {
		return event.Event{}, fmt.Errorf("find event: %w", err)
	}
	e.ID = parsed
	e.Visibility = event.Visibility(visibility.String)
	return e, nil
}

func (s *PostgresStore) CreateDays(ctx context.Context, eventID domain.EventID, days []event.Day) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_days WHERE event_id = $1`, eventID.String(),
	).Scan(&existing); err != nil {
		return fmt.Errorf("count event days: %w", err)
	}
	if existing > 0 {
		return sentinel.ErrConflict
	}

	for _, d := range days {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO event_days (id, event_id, day_date, label)
			VALUES ($1, $2, $3, $4)
		`, d.ID.String(), d.EventID.String(), d.Date, d.Label); err != nil {
			if isForeignKeyViolation(err) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("insert event day: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindDay(ctx context.Context, id domain.EventDayID) (event.Day, error) {
	var (
		d        event.Day
		did, eid string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, day_date, label FROM event_days WHERE id = $1
	`, id.String()).Scan(&did, &eid, &d.Date, &d.Label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Day{}, sentinel.ErrNotFound
		}
		return event.Day{}, fmt.Errorf("find event day: %w", err)
	}
	dayID, err := domain.ParseEventDayID(did)
	if err != nil {
		return event.Day{}, fmt.Errorf("find event day: %w", err)
	}
	eventID, err := domain.ParseEventID(eid)
	if err != nil {
		return event.Day{}, fmt.Errorf("find event day: %w", err)
	}
	d.ID, d.EventID = dayID, eventID
	return d, nil
}

func (s *PostgresStore) ListDays(ctx context.Context, eventID domain.EventID) ([]event.Day, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, day_date, label
		FROM event_days WHERE event_id = $1 ORDER BY day_date ASC
	`, eventID.String())
	if err != nil {
		return nil, fmt.Errorf("list event days: %w", err)
	}
	defer rows.Close()

	var out []event.Day
	for rows.Next() {
		var (
			d        event.Day
			did, eid string
		)
		if err := rows.Scan(&did, &eid, &d.Date, &d.Label); err != nil {
			return nil, fmt.Errorf("scan event day: %w", err)
		}
		dayID, err := domain.ParseEventDayID(did)
		if err != nil {
			return nil, fmt.Errorf("scan event day: %w", err)
		}
		evID, err := domain.ParseEventID(eid)
		if err != nil {
			return nil, fmt.Errorf("scan event day: %w", err)
		}
		d.ID, d.EventID = dayID, evID
		out = append(out, d)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
