package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gatepass/internal/checkin"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// PostgresStore persists attendance in PostgreSQL. Idempotency rides on the
// UNIQUE (participant_id, event_day_id) constraint: duplicate check-ins hit
// ON CONFLICT DO NOTHING and report zero rows affected.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Record(ctx context.Context, c checkin.CheckIn) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO check_ins (participant_id, event_day_id, checked_in_at, staff_id, remarks)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (participant_id, event_day_id) DO NOTHING
	`, c.ParticipantID.String(), c.EventDayID.String(), c.CheckedInAt, c.StaffID, c.Remarks)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("insert check-in: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert check-in: %w", err)
	}
	return n == 1, nil
}

func (s *PostgresStore) Find(ctx context.Context, participantID domain.ParticipantID, dayID domain.EventDayID) (checkin.CheckIn, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT participant_id, event_day_id, checked_in_at, staff_id, remarks
		FROM check_ins
		WHERE participant_id = $1 AND event_day_id = $2
	`, participantID.String(), dayID.String())
	return scanCheckIn(row.Scan)
}

func (s *PostgresStore) ListForDay(ctx context.Context, participantIDs []domain.ParticipantID, dayID domain.EventDayID) ([]checkin.CheckIn, error) {
	ids := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		ids = append(ids, id.String())
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id, event_day_id, checked_in_at, staff_id, remarks
		FROM check_ins
		WHERE event_day_id = $1 AND participant_id = ANY($2)
		ORDER BY checked_in_at
	`, dayID.String(), pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	var out []checkin.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Amend(ctx context.Context, participantID domain.ParticipantID, dayID domain.EventDayID, checkedInAt *time.Time, remarks *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE check_ins
		SET checked_in_at = COALESCE($3, checked_in_at),
		    remarks = COALESCE($4, remarks)
		WHERE participant_id = $1 AND event_day_id = $2
	`, participantID.String(), dayID.String(), checkedInAt, remarks)
	if err != nil {
		return fmt.Errorf("amend check-in: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("amend check-in: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanCheckIn(scan func(dest ...any) error) (checkin.CheckIn, error) {
	var (
		c     checkin.CheckIn
		pid   string
		dayID string
	)
	if err := scan(&pid, &dayID, &c.CheckedInAt, &c.StaffID, &c.Remarks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return checkin.CheckIn{}, sentinel.ErrNotFound
		}
		return checkin.CheckIn{}, fmt.Errorf("scan check-in: %w", err)
	}
	var err error
	if c.ParticipantID, err = domain.ParseParticipantID(pid); err != nil {
		return checkin.CheckIn{}, err
	}
	if c.EventDayID, err = domain.ParseEventDayID(dayID); err != nil {
		return checkin.CheckIn{}, err
	}
	return c, nil
}
