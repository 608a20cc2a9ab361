package store

import (
	"context"

	"gatepass/internal/event"
	"gatepass/pkg/domain"
)

// Store is the persistence port for events and their days. Implementations
// return pkg/platform/sentinel errors for infrastructure facts; services
// translate those into domain errors.
type Store interface {
	CreateEvent(ctx context.Context, e event.Event) error
	FindEvent(ctx context.Context, id domain.EventID) (event.Event, error)

	// CreateDays persists the full day set for an event in one atomic write.
	// Returns sentinel.ErrConflict when days already exist for the event:
	// published spans are immutable.
	CreateDays(ctx context.Context, eventID domain.EventID, days []event.Day) error
	FindDay(ctx context.Context, id domain.EventDayID) (event.Day, error)
	ListDays(ctx context.Context, eventID domain.EventID) ([]event.Day, error)
}
