package domain

import (
	"github.com/google/uuid"

	dErrors "gatepass/pkg/domain-errors"
)

// Typed entity identifiers. Distinct types keep an EventID from being passed
// where a RegistrationID is expected; the compiler enforces it.
//
// Usage: construct via the Parse helpers at trust boundaries. IDs must be
// valid, non-nil UUIDs; direct casting bypasses validation.
type (
	EventID        uuid.UUID
	EventDayID     uuid.UUID
	RegistrationID uuid.UUID
	ParticipantID  uuid.UUID
	MemberID       uuid.UUID
)

func NewEventID() EventID               { return EventID(uuid.New()) }
func NewEventDayID() EventDayID         { return EventDayID(uuid.New()) }
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }
func NewParticipantID() ParticipantID   { return ParticipantID(uuid.New()) }
func NewMemberID() MemberID             { return MemberID(uuid.New()) }

func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id EventDayID) String() string     { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id ParticipantID) String() string  { return uuid.UUID(id).String() }
func (id MemberID) String() string       { return uuid.UUID(id).String() }

func (id EventID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id EventDayID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ParticipantID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be nil", what)
	}
	return u, nil
}

// ParseEventID constructs an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

// ParseEventDayID constructs an EventDayID from external input.
func ParseEventDayID(s string) (EventDayID, error) {
	u, err := parseUUID(s, "event day id")
	return EventDayID(u), err
}

// ParseRegistrationID constructs a RegistrationID from external input.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration id")
	return RegistrationID(u), err
}

// ParseParticipantID constructs a ParticipantID from external input.
func ParseParticipantID(s string) (ParticipantID, error) {
	u, err := parseUUID(s, "participant id")
	return ParticipantID(u), err
}

// ParseMemberID constructs a MemberID from external input.
func ParseMemberID(s string) (MemberID, error) {
	u, err := parseUUID(s, "member id")
	return MemberID(u), err
}
