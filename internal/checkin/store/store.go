package store

import (
	"context"
	"time"

	"gatepass/internal/checkin"
	"gatepass/pkg/domain"
)

// Store persists attendance records.
//
// Record must be idempotent at the storage level: inserting an existing
// (participant, day) pair reports inserted=false and leaves the original
// record untouched.
type Store interface {
	Record(ctx context.Context, c checkin.CheckIn) (inserted bool, err error)
	Find(ctx context.Context, participantID domain.ParticipantID, dayID domain.EventDayID) (checkin.CheckIn, error)
	ListForDay(ctx context.Context, participantIDs []domain.ParticipantID, dayID domain.EventDayID) ([]checkin.CheckIn, error)
	Amend(ctx context.Context, participantID domain.ParticipantID, dayID domain.EventDayID, checkedInAt *time.Time, remarks *string) error
}
