package event

import (
	"time"

	"gatepass/pkg/domain"
)

// Visibility controls who can discover and register for an event.
// A draft event has no visibility value yet.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityDraft   Visibility = ""
)

// Event is the thing people register for. Once published (days generated)
// its time span is immutable.
type Event struct {
	ID         domain.EventID
	Title      string
	StartsAt   time.Time
	EndsAt     time.Time
	Venue      string
	Visibility Visibility
	// FeeCents is the registration fee, zero for free events.
	FeeCents  int64
	CreatedAt time.Time
}

// Day is one calendar day of a possibly multi-day event. Attendance is
// tracked per day, not per event; the day row is immutable once created.
type Day struct {
	ID      domain.EventDayID
	EventID domain.EventID
	Date    time.Time
	Label   string
}

// Registrable reports whether attendee-facing registration is open.
// Drafts and private events take registrations through other channels.
func (e Event) Registrable() bool {
	return e.Visibility == VisibilityPublic
}
