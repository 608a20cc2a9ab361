package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/audit"
	"gatepass/internal/event"
	"gatepass/internal/notify"
	"gatepass/internal/registration"
	"gatepass/internal/registration/store"
	"gatepass/internal/token"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/validate"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeEvents struct {
	events map[domain.EventID]event.Event
}

func (f *fakeEvents) Get(_ context.Context, id domain.EventID) (event.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return event.Event{}, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return e, nil
}

type fakeMailer struct {
	sent []notify.Confirmation
	fail error
}

func (f *fakeMailer) SendConfirmation(_ context.Context, c notify.Confirmation) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, c)
	return nil
}

type fakeProofs struct {
	removed []string
}

func (f *fakeProofs) Remove(_ context.Context, path string) error {
	f.removed = append(f.removed, path)
	return nil
}

type fakeAuditor struct {
	events []audit.Event
}

func (f *fakeAuditor) Emit(_ context.Context, e audit.Event) {
	f.events = append(f.events, e)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	svc     *Service
	store   *store.InMemoryStore
	mailer  *fakeMailer
	proofs  *fakeProofs
	auditor *fakeAuditor
	sealer  *token.Sealer
	eventID domain.EventID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	key := make([]byte, token.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	sealer, err := token.NewSealer(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)

	eventID := domain.NewEventID()
	events := &fakeEvents{events: map[domain.EventID]event.Event{
		eventID: {
			ID:         eventID,
			Title:      "Spring Trade Expo",
			StartsAt:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			EndsAt:     time.Date(2025, 3, 12, 17, 0, 0, 0, time.UTC),
			Visibility: event.VisibilityPublic,
		},
	}}

	st := store.NewInMemoryStore()
	mailer := &fakeMailer{}
	proofs := &fakeProofs{}
	auditor := &fakeAuditor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := New(st, events, sealer, mailer, proofs, auditor, nil, logger)
	require.NoError(t, err)

	return &fixture{
		svc:     svc,
		store:   st,
		mailer:  mailer,
		proofs:  proofs,
		auditor: auditor,
		sealer:  sealer,
		eventID: eventID,
	}
}

func validRequest(eventID domain.EventID) registration.SubmitRequest {
	return registration.SubmitRequest{
		EventID:       eventID.String(),
		MemberType:    "nonmember",
		NonMemberName: "Reyes Trading",
		Registrant: registration.ParticipantInput{
			FirstName:     "Ana",
			LastName:      "Reyes",
			Email:         "ana@example.com",
			ContactNumber: "+63-917-555-0101",
		},
		PaymentMethod: "onsite",
	}
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestSubmit_OnsiteRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, validRequest(f.eventID))
	require.NoError(t, err)

	assert.False(t, res.RegistrationID.IsNil())
	assert.Regexp(t, `^REG-[0-9ABCDEFGHJKMNPQRSTVWXYZ]{10}$`, res.Identifier.String())

	reg, err := f.store.FindRegistration(ctx, res.RegistrationID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentOnsite, reg.PaymentMethod)
	assert.Equal(t, domain.PaymentPending, reg.PaymentStatus)
	assert.Equal(t, registration.MemberTypeNonMember, reg.MemberType)
	assert.False(t, reg.CreatedAt.IsZero())
	assert.WithinDuration(t, time.Now(), reg.CreatedAt, time.Minute)

	parts, err := f.store.ListParticipants(ctx, res.RegistrationID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.True(t, parts[0].IsPrincipal)
	assert.Equal(t, "Ana Reyes", parts[0].FullName())

	// The issued token decodes back to this registration and event.
	payload, err := f.sealer.Open(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.RegistrationID.String(), payload.RegistrationID)
	assert.Equal(t, f.eventID.String(), payload.EventID)
	assert.Equal(t, "ana@example.com", payload.Email)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ana@example.com", f.mailer.sent[0].To)
	assert.Equal(t, res.Token, f.mailer.sent[0].Token)

	require.Len(t, f.auditor.events, 1)
	assert.Equal(t, audit.KindRegistrationCreated, f.auditor.events[0].Kind)
}

func TestSubmit_OnlineRegistrationStoresProof(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validRequest(f.eventID)
	req.MemberType = "member"
	req.NonMemberName = ""
	req.BusinessMemberID = domain.NewMemberID().String()
	req.PaymentMethod = "online"
	req.PaymentProofPath = "proof-123.png"
	req.ProofContentType = "image/png"
	req.OtherParticipants = []registration.ParticipantInput{{
		FirstName:     "Ben",
		LastName:      "Reyes",
		Email:         "ben@example.com",
		ContactNumber: "+63-917-555-0102",
	}}

	res, err := f.svc.Submit(ctx, req)
	require.NoError(t, err)

	reg, err := f.store.FindRegistration(ctx, res.RegistrationID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentOnline, reg.PaymentMethod)
	assert.Equal(t, registration.MemberTypeMember, reg.MemberType)
	require.NotNil(t, reg.MemberID)

	proofImg, err := f.store.FindProof(ctx, res.RegistrationID)
	require.NoError(t, err)
	assert.Equal(t, "proof-123.png", proofImg.Path)
	assert.Equal(t, "image/png", proofImg.ContentType)

	parts, err := f.store.ListParticipants(ctx, res.RegistrationID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.True(t, parts[0].IsPrincipal)
	assert.False(t, parts[1].IsPrincipal)
}

func TestSubmit_ValidationFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("missing registrant email", func(t *testing.T) {
		req := validRequest(f.eventID)
		req.Registrant.Email = "not-an-email"
		_, err := f.svc.Submit(ctx, req)
		ve, ok := validate.AsErrors(err)
		require.True(t, ok)
		require.Len(t, ve.Fields, 1)
		assert.Equal(t, "registrant.Email", ve.Fields[0].Field)
	})

	t.Run("member without member reference", func(t *testing.T) {
		req := validRequest(f.eventID)
		req.MemberType = "member"
		_, err := f.svc.Submit(ctx, req)
		ve, ok := validate.AsErrors(err)
		require.True(t, ok)
		assert.Equal(t, "businessMemberId", ve.Fields[0].Field)
	})

	t.Run("online payment without proof", func(t *testing.T) {
		req := validRequest(f.eventID)
		req.PaymentMethod = "online"
		_, err := f.svc.Submit(ctx, req)
		_, ok := validate.AsErrors(err)
		require.True(t, ok)
	})

	t.Run("onsite payment with proof attached", func(t *testing.T) {
		req := validRequest(f.eventID)
		req.PaymentProofPath = "stray.png"
		req.ProofContentType = "image/png"
		// Proof fields are ignored for onsite payment rather than rejected.
		_, err := f.svc.Submit(ctx, req)
		require.NoError(t, err)
	})
}

func TestSubmit_UnknownEvent(t *testing.T) {
	f := newFixture(t)

	req := validRequest(domain.NewEventID())
	_, err := f.svc.Submit(context.Background(), req)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSubmit_PersistFailureLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	f.store.FailCreate = true

	_, err := f.svc.Submit(context.Background(), validRequest(f.eventID))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	assert.Empty(t, f.mailer.sent, "no email for an unsaved registration")
	assert.Empty(t, f.auditor.events)
}

func TestSubmit_EmailFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.mailer.fail = errors.New("smtp connection refused")

	req := validRequest(f.eventID)
	req.PaymentMethod = "online"
	req.PaymentProofPath = "proof-rollback.png"
	req.ProofContentType = "image/png"

	_, err := f.svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	// No orphaned registration: the store is empty again and the proof blob
	// was removed.
	_, lookupErr := f.svc.GetByIdentifier(context.Background(), "REG-0000000000")
	assert.True(t, dErrors.HasCode(lookupErr, dErrors.CodeNotFound))
	assert.Equal(t, []string{"proof-rollback.png"}, f.proofs.removed)

	// The only audit record is the removal, not a creation.
	require.Len(t, f.auditor.events, 1)
	assert.Equal(t, audit.KindRegistrationRemoved, f.auditor.events[0].Kind)
}

func TestSubmit_CancelledContextRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.mailer.fail = ctx.Err()

	_, err := f.svc.Submit(ctx, validRequest(f.eventID))
	require.Error(t, err)

	// Cleanup ran despite the cancelled request context.
	require.Len(t, f.auditor.events, 1)
	assert.Equal(t, audit.KindRegistrationRemoved, f.auditor.events[0].Kind)
}

func TestSubmit_DraftEventRejected(t *testing.T) {
	f := newFixture(t)
	draftID := domain.NewEventID()
	f.svcEvents().events[draftID] = event.Event{ID: draftID, Title: "Internal Rehearsal", Visibility: event.VisibilityDraft}

	_, err := f.svc.Submit(context.Background(), validRequest(draftID))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

// svcEvents digs the fake back out for tests that add events mid-flight.
func (f *fixture) svcEvents() *fakeEvents {
	return f.svc.events.(*fakeEvents)
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func TestGetByIdentifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, validRequest(f.eventID))
	require.NoError(t, err)

	reg, err := f.svc.GetByIdentifier(ctx, res.Identifier.String())
	require.NoError(t, err)
	assert.Equal(t, res.RegistrationID, reg.ID)

	t.Run("malformed identifier", func(t *testing.T) {
		_, err := f.svc.GetByIdentifier(ctx, "REG-lowercase!")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := f.svc.GetByIdentifier(ctx, "REG-0123456789")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
