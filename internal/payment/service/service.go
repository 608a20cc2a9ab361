package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"gatepass/internal/audit"
	"gatepass/internal/payment/metrics"
	"gatepass/internal/registration"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
)

// Store is the slice of registration storage the payment gate needs.
type Store interface {
	FindRegistration(ctx context.Context, id domain.RegistrationID) (registration.Registration, error)
	FindProof(ctx context.Context, id domain.RegistrationID) (registration.ProofImage, error)
	SetPaymentStatus(ctx context.Context, id domain.RegistrationID, status domain.PaymentStatus) error
}

// Proofs opens stored proof blobs for staff review.
type Proofs interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Invalidator drops cached registration views after a status change.
type Invalidator interface {
	InvalidateRegistration(ctx context.Context, regID domain.RegistrationID)
}

// Auditor records verification actions.
type Auditor interface {
	Emit(ctx context.Context, e audit.Event)
}

// Service is the payment verification gate. Verification is one-way: once a
// registration is verified there is no operation, here or anywhere else,
// that returns it to pending.
type Service struct {
	store   Store
	proofs  Proofs
	views   Invalidator
	auditor Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(store Store, proofs Proofs, views Invalidator, auditor Auditor, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("registration store is required")
	case proofs == nil:
		return nil, errors.New("proof store is required")
	case logger == nil:
		return nil, errors.New("logger is required")
	}
	return &Service{store: store, proofs: proofs, views: views, auditor: auditor, metrics: m, logger: logger}, nil
}

// Verify marks a registration's payment as verified. Verifying an
// already-verified registration is a no-op, not an error, so double-clicks
// and concurrent staff never fail.
func (s *Service) Verify(ctx context.Context, regID domain.RegistrationID, staffID string) (registration.Registration, error) {
	reg, err := s.store.FindRegistration(ctx, regID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return registration.Registration{}, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return registration.Registration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if reg.PaymentStatus == domain.PaymentVerified {
		if s.metrics != nil {
			s.metrics.Reverified.Inc()
		}
		return reg, nil
	}

	if err := s.store.SetPaymentStatus(ctx, regID, domain.PaymentVerified); err != nil {
		return registration.Registration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update payment status")
	}
	reg.PaymentStatus = domain.PaymentVerified

	if s.views != nil {
		s.views.InvalidateRegistration(ctx, regID)
	}
	if s.metrics != nil {
		s.metrics.Verified.Inc()
	}
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Kind:           audit.KindPaymentVerified,
			RegistrationID: regID,
			Actor:          staffID,
		})
	}
	s.logger.Info("payment verified", "registration_id", regID, "staff_id", staffID)
	return reg, nil
}

// Proof streams the uploaded proof image for staff review before verifying.
func (s *Service) Proof(ctx context.Context, regID domain.RegistrationID) (registration.ProofImage, io.ReadCloser, error) {
	img, err := s.store.FindProof(ctx, regID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return registration.ProofImage{}, nil, dErrors.New(dErrors.CodeNotFound, "proof image not found")
		}
		return registration.ProofImage{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof")
	}
	rc, err := s.proofs.Open(ctx, img.Path)
	if err != nil {
		return registration.ProofImage{}, nil, err
	}
	return img, rc, nil
}
