package registration

import (
	"time"

	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/validate"
)

// MemberType distinguishes registrations filed under an organization member
// from walk-up non-member registrations.
type MemberType string

const (
	MemberTypeMember    MemberType = "member"
	MemberTypeNonMember MemberType = "nonmember"
)

// Registration is one attendee-side signup for an event. It may cover
// several participants; exactly one of them is the principal registrant.
type Registration struct {
	ID            domain.RegistrationID
	EventID       domain.EventID
	Identifier    domain.Identifier
	PaymentMethod domain.PaymentMethod
	PaymentStatus domain.PaymentStatus
	MemberType    MemberType
	// MemberID is set for member registrations, NonMemberName otherwise.
	MemberID      *domain.MemberID
	NonMemberName string
	CreatedAt     time.Time
}

// Participant is one person covered by a registration. The participant set
// is fixed at creation time.
type Participant struct {
	ID             domain.ParticipantID
	RegistrationID domain.RegistrationID
	FirstName      string
	LastName       string
	Email          string
	ContactNumber  string
	IsPrincipal    bool
}

// FullName is the display form used in check-in results and emails.
func (p Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProofImage references an uploaded proof-of-payment file. Present only for
// online payment registrations.
type ProofImage struct {
	RegistrationID domain.RegistrationID
	Path           string
	ContentType    string
}

// ParticipantInput is the submission form for one person.
type ParticipantInput struct {
	FirstName     string `json:"firstName" validate:"required,max=100"`
	LastName      string `json:"lastName" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contactNumber" validate:"required,max=32"`
}

// SubmitRequest is the validated multi-step registration form.
type SubmitRequest struct {
	EventID           string             `json:"eventId" validate:"required,uuid"`
	MemberType        string             `json:"memberType" validate:"required,oneof=member nonmember"`
	BusinessMemberID  string             `json:"businessMemberId" validate:"omitempty,uuid"`
	NonMemberName     string             `json:"nonMemberName" validate:"omitempty,max=255"`
	Registrant        ParticipantInput   `json:"registrant"`
	OtherParticipants []ParticipantInput `json:"otherParticipants" validate:"dive"`
	PaymentMethod     string             `json:"paymentMethod" validate:"required,oneof=onsite online"`
	PaymentProofPath  string             `json:"paymentProofPath"`
	ProofContentType  string             `json:"proofContentType"`
}

// Payment maps the request's flat wire fields onto the method sum type.
func (r SubmitRequest) Payment() domain.PaymentDetails {
	if r.PaymentMethod == domain.PaymentOnline.String() {
		return domain.OnlinePayment(r.PaymentProofPath, r.ProofContentType)
	}
	return domain.OnsitePayment()
}

// CrossFieldRules checks the constraints the struct tags cannot express:
// member branch needs a member reference, nonmember branch a display name,
// online payment a proof path.
func (r SubmitRequest) CrossFieldRules(ve *validate.Errors) {
	switch MemberType(r.MemberType) {
	case MemberTypeMember:
		if r.BusinessMemberID == "" {
			ve.Add("businessMemberId", "member registrations require a member reference")
		}
	case MemberTypeNonMember:
		if r.NonMemberName == "" {
			ve.Add("nonMemberName", "non-member registrations require a display name")
		}
	}
	if err := r.Payment().Validate(); err != nil {
		ve.Add(dErrors.FieldOf(err), dErrors.MessageOf(err))
	}
}

// Result is what the submission protocol hands back: everything the success
// page, the confirmation email, and the QR artifact need.
type Result struct {
	RegistrationID domain.RegistrationID
	Identifier     domain.Identifier
	Token          string
}
