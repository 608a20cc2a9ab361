//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/checkin"
	"gatepass/internal/checkin/store"
	"gatepass/internal/event"
	eventstore "gatepass/internal/event/store"
	"gatepass/internal/registration"
	regstore "gatepass/internal/registration/store"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/testutil/containers"
)

type CheckInStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore

	dayID       domain.EventDayID
	participant domain.ParticipantID
	companion   domain.ParticipantID
}

func TestCheckInStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CheckInStoreSuite))
}

func (s *CheckInStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
}

// SetupTest seeds the event, day, registration and participants the FK chain
// requires.
func (s *CheckInStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"check_ins", "proof_images", "participants", "registrations", "event_days", "events"))

	events := eventstore.NewPostgresStore(s.postgres.DB)
	eventID := domain.NewEventID()
	s.Require().NoError(events.CreateEvent(ctx, event.Event{
		ID:         eventID,
		Title:      "Spring Trade Expo",
		StartsAt:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC),
		Visibility: event.VisibilityPublic,
		CreatedAt:  time.Now(),
	}))
	s.dayID = domain.NewEventDayID()
	s.Require().NoError(events.CreateDays(ctx, eventID, []event.Day{
		{ID: s.dayID, EventID: eventID, Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Label: "Day 1"},
	}))

	regs := regstore.NewPostgresStore(s.postgres.DB)
	regID := domain.NewRegistrationID()
	s.participant = domain.NewParticipantID()
	s.companion = domain.NewParticipantID()
	s.Require().NoError(regs.CreateRegistration(ctx, regstore.CreateParams{
		Registration: registration.Registration{
			ID:            regID,
			EventID:       eventID,
			Identifier:    domain.NewIdentifier(),
			PaymentMethod: domain.PaymentOnsite,
			PaymentStatus: domain.PaymentPending,
			MemberType:    registration.MemberTypeNonMember,
			NonMemberName: "Reyes Trading",
			CreatedAt:     time.Now(),
		},
		Participants: []registration.Participant{
			{ID: s.participant, RegistrationID: regID, FirstName: "Ana", LastName: "Reyes", Email: "ana@example.com", IsPrincipal: true},
			{ID: s.companion, RegistrationID: regID, FirstName: "Ben", LastName: "Reyes", Email: "ben@example.com"},
		},
	}))
}

func (s *CheckInStoreSuite) TestRecordIsIdempotent() {
	ctx := context.Background()
	c := checkin.CheckIn{
		ParticipantID: s.participant,
		EventDayID:    s.dayID,
		CheckedInAt:   time.Now().UTC(),
		StaffID:       "staff-7",
	}

	inserted, err := s.store.Record(ctx, c)
	s.Require().NoError(err)
	s.True(inserted)

	// Same pair again: no new row, original timestamp untouched.
	later := c
	later.CheckedInAt = c.CheckedInAt.Add(time.Hour)
	inserted, err = s.store.Record(ctx, later)
	s.Require().NoError(err)
	s.False(inserted)

	got, err := s.store.Find(ctx, s.participant, s.dayID)
	s.Require().NoError(err)
	s.WithinDuration(c.CheckedInAt, got.CheckedInAt, time.Second)
	s.Equal("staff-7", got.StaffID)
}

func (s *CheckInStoreSuite) TestRecordUnknownParticipant() {
	_, err := s.store.Record(context.Background(), checkin.CheckIn{
		ParticipantID: domain.NewParticipantID(),
		EventDayID:    s.dayID,
		CheckedInAt:   time.Now(),
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *CheckInStoreSuite) TestListForDay() {
	ctx := context.Background()
	for _, pid := range []domain.ParticipantID{s.participant, s.companion} {
		_, err := s.store.Record(ctx, checkin.CheckIn{
			ParticipantID: pid,
			EventDayID:    s.dayID,
			CheckedInAt:   time.Now().UTC(),
		})
		s.Require().NoError(err)
	}

	got, err := s.store.ListForDay(ctx, []domain.ParticipantID{s.participant, s.companion, domain.NewParticipantID()}, s.dayID)
	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *CheckInStoreSuite) TestAmend() {
	ctx := context.Background()
	recorded := time.Now().UTC().Truncate(time.Microsecond)
	_, err := s.store.Record(ctx, checkin.CheckIn{
		ParticipantID: s.participant,
		EventDayID:    s.dayID,
		CheckedInAt:   recorded,
	})
	s.Require().NoError(err)

	remarks := "vip escort"
	s.Require().NoError(s.store.Amend(ctx, s.participant, s.dayID, nil, &remarks))

	got, err := s.store.Find(ctx, s.participant, s.dayID)
	s.Require().NoError(err)
	s.Equal("vip escort", got.Remarks)
	s.WithinDuration(recorded, got.CheckedInAt, time.Millisecond)

	corrected := recorded.Add(-15 * time.Minute)
	s.Require().NoError(s.store.Amend(ctx, s.participant, s.dayID, &corrected, nil))

	got, err = s.store.Find(ctx, s.participant, s.dayID)
	s.Require().NoError(err)
	s.WithinDuration(corrected, got.CheckedInAt, time.Millisecond)
	s.Equal("vip escort", got.Remarks)

	never := "never checked in"
	err = s.store.Amend(ctx, s.companion, s.dayID, nil, &never)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
