// Package notify delivers attendee-facing confirmation email. The message
// carries the registration identifier in text and the identity token as an
// embedded QR image; losing the email means re-requesting a token, so
// delivery failures are treated as submission failures upstream.
package notify

import "context"

// Confirmation is everything a confirmation message needs.
type Confirmation struct {
	To           string
	EventTitle   string
	Identifier   string
	Token        string
	Participants []string
}

// Sender dispatches confirmation messages. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendConfirmation(ctx context.Context, c Confirmation) error
}
