package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatepass/internal/event"
	"gatepass/internal/event/store"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
)

// Service owns the event read side and the publish transition. Registration
// and check-in treat it as the authority on what exists and when.
type Service struct {
	store store.Store
}

func New(s store.Store) (*Service, error) {
	if s == nil {
		return nil, errors.New("event store is required")
	}
	return &Service{store: s}, nil
}

// Create persists a new event. The span must be well-formed; days are not
// generated until the event is published.
func (s *Service) Create(ctx context.Context, e event.Event) (event.Event, error) {
	if e.Title == "" {
		return event.Event{}, dErrors.NewField("title", "is required")
	}
	if !e.EndsAt.After(e.StartsAt) {
		return event.Event{}, dErrors.NewField("endsAt", "must be after startsAt")
	}
	if e.ID.IsNil() {
		e.ID = domain.NewEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return event.Event{}, dErrors.New(dErrors.CodeConflict, "event already exists")
		}
		return event.Event{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}
	return e, nil
}

// Get loads one event.
func (s *Service) Get(ctx context.Context, id domain.EventID) (event.Event, error) {
	e, err := s.store.FindEvent(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return event.Event{}, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return event.Event{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	return e, nil
}

// GetDay loads one event day, the scoping unit for attendance.
func (s *Service) GetDay(ctx context.Context, id domain.EventDayID) (event.Day, error) {
	d, err := s.store.FindDay(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return event.Day{}, dErrors.New(dErrors.CodeNotFound, "event day not found")
		}
		return event.Day{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event day")
	}
	return d, nil
}

// Days lists an event's days in date order.
func (s *Service) Days(ctx context.Context, eventID domain.EventID) ([]event.Day, error) {
	days, err := s.store.ListDays(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list event days")
	}
	return days, nil
}

// Publish materializes one EventDay per calendar day in the event's span.
// The span is immutable afterwards: a second publish is a conflict, not a
// regeneration.
func (s *Service) Publish(ctx context.Context, eventID domain.EventID) ([]event.Day, error) {
	e, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	days := GenerateDays(e)
	if err := s.store.CreateDays(ctx, eventID, days); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "event is already published")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to publish event")
	}
	return days, nil
}

// GenerateDays derives the day rows for an event's span. Dates are truncated
// to calendar days in the event's local offset; a span ending at midnight
// does not spill into an extra day.
func GenerateDays(e event.Event) []event.Day {
	start := truncateToDay(e.StartsAt)
	end := truncateToDay(e.EndsAt)
	if e.EndsAt.Equal(end) && e.EndsAt.After(e.StartsAt) {
		// Ends exactly at midnight: the final day is the one before.
		end = end.AddDate(0, 0, -1)
	}

	var days []event.Day
	n := 1
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, event.Day{
			ID:      domain.NewEventDayID(),
			EventID: e.ID,
			Date:    d,
			Label:   fmt.Sprintf("Day %d - %s", n, d.Format("Mon Jan 2")),
		})
		n++
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
