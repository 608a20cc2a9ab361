package store

import (
	"context"
	"sort"
	"sync"

	"gatepass/internal/registration"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations in maps behind one mutex, which makes
// every operation trivially atomic. Unit tests and local development use it;
// postgres is the production implementation.
type InMemoryStore struct {
	mu            sync.RWMutex
	registrations map[domain.RegistrationID]registration.Registration
	byIdentifier  map[domain.Identifier]domain.RegistrationID
	participants  map[domain.ParticipantID]registration.Participant
	proofs        map[domain.RegistrationID]registration.ProofImage

	// FailCreate forces the next CreateRegistration to fail. Lets tests
	// exercise the persistence failure path without a broken database.
	FailCreate bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		registrations: make(map[domain.RegistrationID]registration.Registration),
		byIdentifier:  make(map[domain.Identifier]domain.RegistrationID),
		participants:  make(map[domain.ParticipantID]registration.Participant),
		proofs:        make(map[domain.RegistrationID]registration.ProofImage),
	}
}

func (s *InMemoryStore) CreateRegistration(_ context.Context, p CreateParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate {
		return sentinel.ErrUnavailable
	}
	if _, ok := s.registrations[p.Registration.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byIdentifier[p.Registration.Identifier]; ok {
		return sentinel.ErrConflict
	}
	s.registrations[p.Registration.ID] = p.Registration
	s.byIdentifier[p.Registration.Identifier] = p.Registration.ID
	for _, part := range p.Participants {
		s.participants[part.ID] = part
	}
	if p.Proof != nil {
		s.proofs[p.Registration.ID] = *p.Proof
	}
	return nil
}

func (s *InMemoryStore) DeleteRegistration(_ context.Context, id domain.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.registrations, id)
	delete(s.byIdentifier, reg.Identifier)
	delete(s.proofs, id)
	for pid, part := range s.participants {
		if part.RegistrationID == id {
			delete(s.participants, pid)
		}
	}
	return nil
}

func (s *InMemoryStore) FindRegistration(_ context.Context, id domain.RegistrationID) (registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[id]
	if !ok {
		return registration.Registration{}, sentinel.ErrNotFound
	}
	return reg, nil
}

func (s *InMemoryStore) FindByIdentifier(_ context.Context, ident domain.Identifier) (registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byIdentifier[ident]
	if !ok {
		return registration.Registration{}, sentinel.ErrNotFound
	}
	return s.registrations[id], nil
}

func (s *InMemoryStore) ListParticipants(_ context.Context, id domain.RegistrationID) ([]registration.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []registration.Participant
	for _, p := range s.participants {
		if p.RegistrationID == id {
			out = append(out, p)
		}
	}
	// Principal first, then stable by name for deterministic tests.
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrincipal != out[j].IsPrincipal {
			return out[i].IsPrincipal
		}
		return out[i].FullName() < out[j].FullName()
	})
	return out, nil
}

func (s *InMemoryStore) FindProof(_ context.Context, id domain.RegistrationID) (registration.ProofImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proof, ok := s.proofs[id]
	if !ok {
		return registration.ProofImage{}, sentinel.ErrNotFound
	}
	return proof, nil
}

func (s *InMemoryStore) SetPaymentStatus(_ context.Context, id domain.RegistrationID, status domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	reg.PaymentStatus = status
	s.registrations[id] = reg
	return nil
}
