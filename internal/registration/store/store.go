package store

import (
	"context"

	"gatepass/internal/registration"
	"gatepass/pkg/domain"
)

// CreateParams is the full row set the submission protocol persists in one
// atomic write: registration + participants + optional proof image.
type CreateParams struct {
	Registration registration.Registration
	Participants []registration.Participant
	Proof        *registration.ProofImage
}

// Store is the persistence port for registrations. The contract is
// atomicity of CreateRegistration and DeleteRegistration: partial row sets
// must never survive a failure. Implementations return
// pkg/platform/sentinel errors for infrastructure facts.
type Store interface {
	// CreateRegistration writes all rows or none. sentinel.ErrConflict on
	// identifier or id collision, sentinel.ErrNotFound when the event does
	// not exist.
	CreateRegistration(ctx context.Context, p CreateParams) error

	// DeleteRegistration removes the registration and cascades participants
	// and the proof row. Used only as the submission protocol's
	// compensating action.
	DeleteRegistration(ctx context.Context, id domain.RegistrationID) error

	FindRegistration(ctx context.Context, id domain.RegistrationID) (registration.Registration, error)
	FindByIdentifier(ctx context.Context, ident domain.Identifier) (registration.Registration, error)
	ListParticipants(ctx context.Context, id domain.RegistrationID) ([]registration.Participant, error)
	FindProof(ctx context.Context, id domain.RegistrationID) (registration.ProofImage, error)

	// SetPaymentStatus flips the payment state. The one-way pending->verified
	// rule is enforced by the payment gate service, not here.
	SetPaymentStatus(ctx context.Context, id domain.RegistrationID, status domain.PaymentStatus) error
}
