package store

import (
	"context"
	"sync"
	"time"

	"gatepass/internal/checkin"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

type key struct {
	participant domain.ParticipantID
	day         domain.EventDayID
}

// InMemoryStore keeps attendance in a map behind one mutex. Participants
// must be seeded before they can be recorded, mirroring the foreign key the
// SQL schema enforces.
type InMemoryStore struct {
	mu           sync.RWMutex
	records      map[key]checkin.CheckIn
	participants map[domain.ParticipantID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:      make(map[key]checkin.CheckIn),
		participants: make(map[domain.ParticipantID]bool),
	}
}

// SeedParticipants registers participant rows the store will accept.
func (s *InMemoryStore) SeedParticipants(ids ...domain.ParticipantID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.participants[id] = true
	}
}

func (s *InMemoryStore) Record(_ context.Context, c checkin.CheckIn) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.participants[c.ParticipantID] {
		return false, sentinel.ErrNotFound
	}
	k := key{participant: c.ParticipantID, day: c.EventDayID}
	if _, ok := s.records[k]; ok {
		return false, nil
	}
	s.records[k] = c
	return true, nil
}

func (s *InMemoryStore) Find(_ context.Context, participantID domain.ParticipantID, dayID domain.EventDayID) (checkin.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[key{participant: participantID, day: dayID}]
	if !ok {
		return checkin.CheckIn{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *InMemoryStore) ListForDay(_ context.Context, participantIDs []domain.ParticipantID, dayID domain.EventDayID) ([]checkin.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []checkin.CheckIn
	for _, pid := range participantIDs {
		if c, ok := s.records[key{participant: pid, day: dayID}]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Amend(_ context.Context, participantID domain.ParticipantID, dayID domain.EventDayID, checkedInAt *time.Time, remarks *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{participant: participantID, day: dayID}
	c, ok := s.records[k]
	if !ok {
		return sentinel.ErrNotFound
	}
	if checkedInAt != nil {
		c.CheckedInAt = *checkedInAt
	}
	if remarks != nil {
		c.Remarks = *remarks
	}
	s.records[k] = c
	return nil
}
