package audit

import (
	"time"

	"gatepass/pkg/domain"
)

// Kind names the domain action an event records.
type Kind string

const (
	KindRegistrationCreated Kind = "registration.created"
	KindRegistrationRemoved Kind = "registration.removed"
	KindCheckInRecorded     Kind = "checkin.recorded"
	KindCheckInAmended      Kind = "checkin.amended"
	KindPaymentVerified     Kind = "payment.verified"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time             `json:"timestamp"`
	Kind           Kind                  `json:"kind"`
	RegistrationID domain.RegistrationID `json:"registrationId"`
	// Actor is the staff id for staff-initiated actions, empty for
	// attendee-side actions.
	Actor  string `json:"actor,omitempty"`
	Detail string `json:"detail,omitempty"`
}
