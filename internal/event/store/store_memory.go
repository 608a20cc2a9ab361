package store

import (
	"context"
	"sort"
	"sync"

	"gatepass/internal/event"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore keeps events and days in maps. Used by unit tests and local
// development; the postgres store is the production implementation.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.EventID]event.Event
	days   map[domain.EventDayID]event.Day
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events: make(map[domain.EventID]event.Event),
		days:   make(map[domain.EventDayID]event.Day),
	}
}

func (s *InMemoryStore) CreateEvent(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; ok {
		return sentinel.ErrConflict
	}
	s.events[e.ID] = e
	return nil
}

func (s *InMemoryStore) FindEvent(_ context.Context, id domain.EventID) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return event.Event{}, sentinel.ErrNotFound
	}
	return e, nil
}

func (s *InMemoryStore) CreateDays(_ context.Context, eventID domain.EventID, days []event.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, d := range s.days {
		if d.EventID == eventID {
			return sentinel.ErrConflict
		}
	}
	for _, d := range days {
		s.days[d.ID] = d
	}
	return nil
}

func (s *InMemoryStore) FindDay(_ context.Context, id domain.EventDayID) (event.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.days[id]
	if !ok {
		return event.Day{}, sentinel.ErrNotFound
	}
	return d, nil
}

func (s *InMemoryStore) ListDays(_ context.Context, eventID domain.EventID) ([]event.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []event.Day
	for _, d := range s.days {
		if d.EventID == eventID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
