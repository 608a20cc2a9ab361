package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gatepass/internal/audit"
	"gatepass/internal/event"
	"gatepass/internal/notify"
	"gatepass/internal/registration"
	"gatepass/internal/registration/metrics"
	"gatepass/internal/registration/store"
	"gatepass/internal/token"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/validate"
)

// Events is the slice of the event service the submission protocol needs.
type Events interface {
	Get(ctx context.Context, id domain.EventID) (event.Event, error)
}

// ProofRemover deletes an uploaded proof blob during rollback.
type ProofRemover interface {
	Remove(ctx context.Context, path string) error
}

// Auditor records domain actions. Emission never fails the request.
type Auditor interface {
	Emit(ctx context.Context, e audit.Event)
}

// Service runs the submission protocol: validate, persist atomically, seal
// the identity token, deliver the confirmation email. A failure after the
// persist step rolls the registration back so no attendee is left holding a
// record without a token in hand.
type Service struct {
	store   store.Store
	events  Events
	sealer  *token.Sealer
	mailer  notify.Sender
	proofs  ProofRemover
	auditor Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(s store.Store, events Events, sealer *token.Sealer, mailer notify.Sender, proofs ProofRemover, auditor Auditor, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	switch {
	case s == nil:
		return nil, errors.New("registration store is required")
	case events == nil:
		return nil, errors.New("event service is required")
	case sealer == nil:
		return nil, errors.New("token sealer is required")
	case mailer == nil:
		return nil, errors.New("mail sender is required")
	case proofs == nil:
		return nil, errors.New("proof store is required")
	case logger == nil:
		return nil, errors.New("logger is required")
	}
	return &Service{
		store:   s,
		events:  events,
		sealer:  sealer,
		mailer:  mailer,
		proofs:  proofs,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}, nil
}

// Submit processes one registration submission end to end.
//
// The store write is atomic: registration, participants and proof reference
// land together or not at all. Token sealing and email delivery happen after
// the write; if either fails, the write is compensated by deleting the
// registration and its proof blob, then the caller sees a single internal
// error. Cancellation of ctx mid-flight triggers the same compensation.
func (s *Service) Submit(ctx context.Context, req registration.SubmitRequest) (registration.Result, error) {
	if err := validateRequest(req); err != nil {
		return registration.Result{}, err
	}

	eventID, err := domain.ParseEventID(req.EventID)
	if err != nil {
		return registration.Result{}, err
	}
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return registration.Result{}, err
	}
	if !ev.Registrable() {
		return registration.Result{}, dErrors.New(dErrors.CodeConflict, "event is not open for registration")
	}

	reg, participants, proofImage, err := buildRecords(req, eventID)
	if err != nil {
		return registration.Result{}, err
	}

	if err := s.store.CreateRegistration(ctx, store.CreateParams{
		Registration: reg,
		Participants: participants,
		Proof:        proofImage,
	}); err != nil {
		s.logger.Error("registration persist failed", "event_id", eventID, "error", err)
		return registration.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "registration could not be saved")
	}
	if s.metrics != nil {
		s.metrics.Created.Inc()
	}

	proofPath := ""
	if proofImage != nil {
		proofPath = proofImage.Path
	}

	tok, err := s.sealer.Seal(token.NewPayload(req.Registrant.Email, reg.ID, eventID))
	if err != nil {
		s.rollback(ctx, reg, proofPath, "token sealing failed", err)
		return registration.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "registration could not be completed")
	}
	if s.metrics != nil {
		s.metrics.TokensIssued.Inc()
	}

	if err := s.mailer.SendConfirmation(ctx, notify.Confirmation{
		To:           req.Registrant.Email,
		EventTitle:   ev.Title,
		Identifier:   reg.Identifier.String(),
		Token:        tok,
		Participants: participantNames(participants),
	}); err != nil {
		s.rollback(ctx, reg, proofPath, "confirmation email failed", err)
		return registration.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "confirmation email could not be delivered")
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Kind:           audit.KindRegistrationCreated,
			RegistrationID: reg.ID,
			Detail:         reg.Identifier.String(),
		})
	}
	s.logger.Info("registration created",
		"registration_id", reg.ID,
		"event_id", eventID,
		"identifier", reg.Identifier,
		"participants", len(participants),
	)

	return registration.Result{
		RegistrationID: reg.ID,
		Identifier:     reg.Identifier,
		Token:          tok,
	}, nil
}

// Get loads one registration by id.
func (s *Service) Get(ctx context.Context, id domain.RegistrationID) (registration.Registration, error) {
	reg, err := s.store.FindRegistration(ctx, id)
	if err != nil {
		return registration.Registration{}, translateLookupErr(err)
	}
	return reg, nil
}

// GetByIdentifier loads one registration by its human-readable identifier,
// the manual-lookup fallback when a QR code cannot be scanned.
func (s *Service) GetByIdentifier(ctx context.Context, raw string) (registration.Registration, error) {
	ident, err := domain.ParseIdentifier(raw)
	if err != nil {
		return registration.Registration{}, err
	}
	reg, err := s.store.FindByIdentifier(ctx, ident)
	if err != nil {
		return registration.Registration{}, translateLookupErr(err)
	}
	return reg, nil
}

// Participants lists everyone covered by a registration, principal first.
func (s *Service) Participants(ctx context.Context, id domain.RegistrationID) ([]registration.Participant, error) {
	ps, err := s.store.ListParticipants(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}
	return ps, nil
}

// rollback compensates a persisted registration after a downstream failure.
// It runs detached from the request's cancellation so a cancelled submission
// still gets cleaned up.
func (s *Service) rollback(ctx context.Context, reg registration.Registration, proofPath, reason string, cause error) {
	cleanup := context.WithoutCancel(ctx)
	s.logger.Error("rolling back registration", "registration_id", reg.ID, "reason", reason, "error", cause)

	if err := s.store.DeleteRegistration(cleanup, reg.ID); err != nil {
		s.logger.Error("rollback delete failed, registration orphaned", "registration_id", reg.ID, "error", err)
		return
	}
	if proofPath != "" {
		if err := s.proofs.Remove(cleanup, proofPath); err != nil {
			s.logger.Warn("rollback proof removal failed", "registration_id", reg.ID, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RolledBack.Inc()
	}
	if s.auditor != nil {
		s.auditor.Emit(cleanup, audit.Event{
			Kind:           audit.KindRegistrationRemoved,
			RegistrationID: reg.ID,
			Detail:         reason,
		})
	}
}

func validateRequest(req registration.SubmitRequest) error {
	ve := &validate.Errors{}
	validate.Struct(ve, req)
	req.CrossFieldRules(ve)
	if ve.Any() {
		return ve
	}
	return nil
}

func buildRecords(req registration.SubmitRequest, eventID domain.EventID) (registration.Registration, []registration.Participant, *registration.ProofImage, error) {
	payment := req.Payment()

	reg := registration.Registration{
		ID:            domain.NewRegistrationID(),
		EventID:       eventID,
		Identifier:    domain.NewIdentifier(),
		PaymentMethod: payment.Method,
		PaymentStatus: domain.PaymentPending,
		MemberType:    registration.MemberType(req.MemberType),
		NonMemberName: req.NonMemberName,
		CreatedAt:     time.Now().UTC(),
	}
	if reg.MemberType == registration.MemberTypeMember {
		memberID, err := domain.ParseMemberID(req.BusinessMemberID)
		if err != nil {
			return registration.Registration{}, nil, nil, err
		}
		reg.MemberID = &memberID
	}

	participants := make([]registration.Participant, 0, 1+len(req.OtherParticipants))
	participants = append(participants, newParticipant(reg.ID, req.Registrant, true))
	for _, in := range req.OtherParticipants {
		participants = append(participants, newParticipant(reg.ID, in, false))
	}

	var proofImage *registration.ProofImage
	if payment.Proof != nil {
		proofImage = &registration.ProofImage{
			RegistrationID: reg.ID,
			Path:           payment.Proof.Path,
			ContentType:    payment.Proof.ContentType,
		}
	}
	return reg, participants, proofImage, nil
}

func newParticipant(regID domain.RegistrationID, in registration.ParticipantInput, principal bool) registration.Participant {
	return registration.Participant{
		ID:             domain.NewParticipantID(),
		RegistrationID: regID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		ContactNumber:  in.ContactNumber,
		IsPrincipal:    principal,
	}
}

func participantNames(ps []registration.Participant) []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.FullName())
	}
	return names
}

func translateLookupErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
}
