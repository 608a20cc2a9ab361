package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gatepass/internal/audit"
	"gatepass/internal/checkin"
	"gatepass/internal/checkin/metrics"
	"gatepass/internal/checkin/store"
	"gatepass/internal/event"
	"gatepass/internal/registration"
	"gatepass/internal/token"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
)

// Registrations is the slice of the registration service the desk needs.
// Registration state is always re-read here: the token is a capability to
// look the registration up, never a cache of its contents.
type Registrations interface {
	Get(ctx context.Context, id domain.RegistrationID) (registration.Registration, error)
	GetByIdentifier(ctx context.Context, raw string) (registration.Registration, error)
	Participants(ctx context.Context, id domain.RegistrationID) ([]registration.Participant, error)
}

// Events resolves the scanned day and its owning event.
type Events interface {
	GetDay(ctx context.Context, id domain.EventDayID) (event.Day, error)
}

// Auditor records desk actions.
type Auditor interface {
	Emit(ctx context.Context, e audit.Event)
}

// Views is an optional read-through cache of resolved scan results. Payment
// fields are always refreshed from the live registration, so a cached view
// can never hide a verification that happened after it was stored.
type Views interface {
	GetView(ctx context.Context, regID domain.RegistrationID, dayID domain.EventDayID) (checkin.ScanResult, bool)
	SetView(ctx context.Context, res checkin.ScanResult)
	InvalidateDay(ctx context.Context, dayID domain.EventDayID)
}

// Service runs the check-in desk: resolve a scanned token or typed
// identifier to live registration state, record attendance idempotently per
// event day, and amend remarks afterwards.
type Service struct {
	store         store.Store
	sealer        *token.Sealer
	registrations Registrations
	events        Events
	views         Views
	auditor       Auditor
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

func New(s store.Store, sealer *token.Sealer, regs Registrations, events Events, views Views, auditor Auditor, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	switch {
	case s == nil:
		return nil, errors.New("check-in store is required")
	case sealer == nil:
		return nil, errors.New("token sealer is required")
	case regs == nil:
		return nil, errors.New("registration service is required")
	case events == nil:
		return nil, errors.New("event service is required")
	case logger == nil:
		return nil, errors.New("logger is required")
	}
	return &Service{
		store:         s,
		sealer:        sealer,
		registrations: regs,
		events:        events,
		views:         views,
		auditor:       auditor,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// ResolveScan turns a scanned token into live registration state for one
// event day.
//
// The token gates nothing by itself: a cryptographically valid token whose
// registration has been removed resolves to not-found, and one whose claims
// disagree with stored state is rejected as invalid. Nothing from a rejected
// token is ever surfaced to the desk.
func (s *Service) ResolveScan(ctx context.Context, rawToken string, dayID domain.EventDayID) (checkin.ScanResult, error) {
	payload, err := s.sealer.Open(rawToken)
	if err != nil {
		s.reject()
		return checkin.ScanResult{}, err
	}
	regID, err := payload.Registration()
	if err != nil {
		s.reject()
		return checkin.ScanResult{}, dErrors.Wrap(err, dErrors.CodeTokenInvalid, "token is not valid")
	}

	reg, err := s.registrations.Get(ctx, regID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.reject()
		}
		return checkin.ScanResult{}, err
	}
	if payload.EventID != reg.EventID.String() {
		s.reject()
		return checkin.ScanResult{}, dErrors.New(dErrors.CodeTokenInvalid, "token does not match registration records")
	}
	return s.resolve(ctx, reg, dayID)
}

// ResolveIdentifier is the manual fallback for unscannable codes: the desk
// types the printed identifier instead.
func (s *Service) ResolveIdentifier(ctx context.Context, rawIdentifier string, dayID domain.EventDayID) (checkin.ScanResult, error) {
	reg, err := s.registrations.GetByIdentifier(ctx, rawIdentifier)
	if err != nil {
		return checkin.ScanResult{}, err
	}
	return s.resolve(ctx, reg, dayID)
}

func (s *Service) resolve(ctx context.Context, reg registration.Registration, dayID domain.EventDayID) (checkin.ScanResult, error) {
	if s.views != nil {
		if res, ok := s.views.GetView(ctx, reg.ID, dayID); ok {
			res.PaymentMethod = reg.PaymentMethod
			res.PaymentStatus = reg.PaymentStatus
			res.PaymentAdvisory = paymentAdvisory(reg)
			if s.metrics != nil {
				s.metrics.ScansResolved.Inc()
			}
			return res, nil
		}
	}

	day, err := s.events.GetDay(ctx, dayID)
	if err != nil {
		return checkin.ScanResult{}, err
	}
	if day.EventID != reg.EventID {
		return checkin.ScanResult{}, dErrors.New(dErrors.CodeConflict, "event day belongs to a different event")
	}

	participants, err := s.registrations.Participants(ctx, reg.ID)
	if err != nil {
		return checkin.ScanResult{}, err
	}
	ids := make([]domain.ParticipantID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	recorded, err := s.store.ListForDay(ctx, ids, dayID)
	if err != nil {
		return checkin.ScanResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance")
	}
	byParticipant := make(map[domain.ParticipantID]checkin.CheckIn, len(recorded))
	for _, c := range recorded {
		byParticipant[c.ParticipantID] = c
	}

	result := checkin.ScanResult{
		RegistrationID:  reg.ID,
		Identifier:      reg.Identifier,
		EventID:         reg.EventID,
		EventDayID:      dayID,
		PaymentMethod:   reg.PaymentMethod,
		PaymentStatus:   reg.PaymentStatus,
		PaymentAdvisory: paymentAdvisory(reg),
	}
	for _, p := range participants {
		status := checkin.ParticipantStatus{Participant: p}
		if c, ok := byParticipant[p.ID]; ok {
			status.CheckedIn = true
			status.CheckedInAt = c.CheckedInAt
			status.Remarks = c.Remarks
		}
		result.Participants = append(result.Participants, status)
	}

	if s.views != nil {
		s.views.SetView(ctx, result)
	}
	if s.metrics != nil {
		s.metrics.ScansResolved.Inc()
	}
	return result, nil
}

// Record checks the requested participants in for one day. Already-present
// participants are counted, not errors: the desk can re-scan a group where
// half arrived earlier and only the newcomers are recorded.
func (s *Service) Record(ctx context.Context, req checkin.RecordRequest) (checkin.RecordResult, error) {
	if len(req.ParticipantIDs) == 0 {
		return checkin.RecordResult{}, dErrors.New(dErrors.CodeValidation, "at least one participant is required")
	}
	if _, err := s.events.GetDay(ctx, req.EventDayID); err != nil {
		return checkin.RecordResult{}, err
	}

	var res checkin.RecordResult
	now := s.now()
	for _, pid := range req.ParticipantIDs {
		inserted, err := s.store.Record(ctx, checkin.CheckIn{
			ParticipantID: pid,
			EventDayID:    req.EventDayID,
			CheckedInAt:   now,
			StaffID:       req.StaffID,
			Remarks:       req.Remarks[pid],
		})
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return res, dErrors.New(dErrors.CodeNotFound, "participant not found")
			}
			return res, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record check-in")
		}
		if inserted {
			res.NewlyCheckedIn++
		} else {
			res.AlreadyPresent++
		}
	}

	if s.views != nil && res.NewlyCheckedIn > 0 {
		s.views.InvalidateDay(ctx, req.EventDayID)
	}
	if s.metrics != nil {
		s.metrics.CheckIns.Add(float64(res.NewlyCheckedIn))
		s.metrics.Duplicates.Add(float64(res.AlreadyPresent))
	}
	if s.auditor != nil && res.NewlyCheckedIn > 0 {
		s.auditor.Emit(ctx, audit.Event{
			Kind:  audit.KindCheckInRecorded,
			Actor: req.StaffID,
		})
	}
	s.logger.Info("check-in recorded",
		"event_day_id", req.EventDayID,
		"new", res.NewlyCheckedIn,
		"already_present", res.AlreadyPresent,
	)
	return res, nil
}

// Amend corrects the timestamp or remarks of an existing check-in. The
// attendance fact itself (who, which day) is immutable.
func (s *Service) Amend(ctx context.Context, req checkin.AmendRequest) error {
	if req.CheckedInAt == nil && req.Remarks == nil {
		return dErrors.New(dErrors.CodeValidation, "nothing to amend")
	}
	if err := s.store.Amend(ctx, req.ParticipantID, req.EventDayID, req.CheckedInAt, req.Remarks); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "check-in not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to amend check-in")
	}
	if s.views != nil {
		s.views.InvalidateDay(ctx, req.EventDayID)
	}
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Kind:  audit.KindCheckInAmended,
			Actor: req.StaffID,
		})
	}
	return nil
}

func (s *Service) reject() {
	if s.metrics != nil {
		s.metrics.ScansRejected.Inc()
	}
}

func paymentAdvisory(reg registration.Registration) string {
	if reg.PaymentStatus != domain.PaymentPending {
		return ""
	}
	if reg.PaymentMethod == domain.PaymentOnline {
		return "payment proof has not been verified yet"
	}
	return "onsite payment has not been collected yet"
}
