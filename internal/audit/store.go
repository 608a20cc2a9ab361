package audit

import (
	"context"
	"sync"

	"gatepass/pkg/domain"
)

// Store is an append-only audit sink with per-registration reads.
type Store interface {
	Append(ctx context.Context, e Event) error
	ListByRegistration(ctx context.Context, id domain.RegistrationID) ([]Event, error)
}

// InMemoryStore keeps events in process memory. Used by tests and by
// deployments that rely on the broker sink alone.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *InMemoryStore) ListByRegistration(_ context.Context, id domain.RegistrationID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.RegistrationID == id {
			out = append(out, e)
		}
	}
	return out, nil
}
