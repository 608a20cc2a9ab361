package token

import (
	"github.com/go-playground/validator/v10"

	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// Payload is the minimal claim set bound into every issued token. It is a
// capability to look up a registration, never a cache of registration state:
// payment status, participants and the like are re-read from storage at
// verification time.
type Payload struct {
	Email          string `json:"email" validate:"required,email"`
	RegistrationID string `json:"registrationId" validate:"required,uuid"`
	EventID        string `json:"eventId" validate:"required,uuid"`
}

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// NewPayload binds the claim set from typed domain values.
func NewPayload(email string, regID domain.RegistrationID, eventID domain.EventID) Payload {
	return Payload{
		Email:          email,
		RegistrationID: regID.String(),
		EventID:        eventID.String(),
	}
}

// Validate checks the payload against the schema shared by Seal and Open.
// The same rules apply on both sides so a decrypted-but-malformed payload is
// rejected exactly like a malformed input.
func (p Payload) Validate() error {
	if err := payloadValidator.Struct(p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTokenInvalid, "payload does not match schema")
	}
	return nil
}

// Registration returns the typed registration id. Valid payloads always
// parse; the error path exists for payloads built by hand in tests.
func (p Payload) Registration() (domain.RegistrationID, error) {
	return domain.ParseRegistrationID(p.RegistrationID)
}

// Event returns the typed event id.
func (p Payload) Event() (domain.EventID, error) {
	return domain.ParseEventID(p.EventID)
}
