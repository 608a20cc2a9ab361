package checkin

import (
	"time"

	"gatepass/internal/registration"
	"gatepass/pkg/domain"
)

// CheckIn is one participant's recorded attendance for one event day. The
// pair (participant, day) is unique: repeating a check-in never creates a
// second record or moves the original timestamp.
type CheckIn struct {
	ParticipantID domain.ParticipantID
	EventDayID    domain.EventDayID
	CheckedInAt   time.Time
	// StaffID records who performed the scan.
	StaffID string
	Remarks string
}

// ParticipantStatus pairs a participant with their attendance state for the
// scanned day.
type ParticipantStatus struct {
	Participant registration.Participant
	CheckedIn   bool
	CheckedInAt time.Time
	Remarks     string
}

// ScanResult is everything the check-in desk sees after a scan resolves: the
// registration summary, each covered participant's state for the scanned
// day, and any payment advisory.
type ScanResult struct {
	RegistrationID domain.RegistrationID
	Identifier     domain.Identifier
	EventID        domain.EventID
	EventDayID     domain.EventDayID
	PaymentMethod  domain.PaymentMethod
	PaymentStatus  domain.PaymentStatus
	// PaymentAdvisory is set when payment is still pending. Check-in is not
	// blocked; the desk decides whether to collect payment first.
	PaymentAdvisory string
	Participants    []ParticipantStatus
}

// RecordRequest asks to check a set of participants in for one day. Remarks
// are keyed by participant; absent keys record without remarks.
type RecordRequest struct {
	EventDayID     domain.EventDayID
	ParticipantIDs []domain.ParticipantID
	StaffID        string
	Remarks        map[domain.ParticipantID]string
}

// RecordResult reports how many of the requested participants were newly
// checked in; the rest were already present.
type RecordResult struct {
	NewlyCheckedIn int
	AlreadyPresent int
}

// AmendRequest corrects the timestamp or remarks of an existing check-in.
// Nil fields stay as recorded. The attendance fact itself (who, which day)
// is immutable.
type AmendRequest struct {
	ParticipantID domain.ParticipantID
	EventDayID    domain.EventDayID
	CheckedInAt   *time.Time
	Remarks       *string
	StaffID       string
}
