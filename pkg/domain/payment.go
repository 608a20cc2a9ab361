package domain

import dErrors "gatepass/pkg/domain-errors"

// PaymentMethod is how a registration intends to pay.
// Invariant: the value must be one of the supported methods.
//
// Usage: construct via ParsePaymentMethod at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type PaymentMethod string

const (
	PaymentOnsite PaymentMethod = "onsite"
	PaymentOnline PaymentMethod = "online"
)

var validPaymentMethods = map[PaymentMethod]bool{
	PaymentOnsite: true,
	PaymentOnline: true,
}

// ParsePaymentMethod constructs a PaymentMethod from external input.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "payment method cannot be empty")
	}
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid payment method")
	}
	return m, nil
}

func (m PaymentMethod) IsValid() bool  { return validPaymentMethods[m] }
func (m PaymentMethod) String() string { return string(m) }

// PaymentStatus tracks the one-way pending -> verified transition.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentPending || s == PaymentVerified
}

func (s PaymentStatus) String() string { return string(s) }

// PaymentDetails is the sum type for method-specific submission data. Exactly
// one branch applies: onsite carries nothing, online carries the already
// uploaded proof reference.
type PaymentDetails struct {
	Method PaymentMethod
	Proof  *PaymentProof
}

// PaymentProof references an uploaded proof-of-payment file.
type PaymentProof struct {
	Path        string
	ContentType string
}

// OnsitePayment builds the onsite branch.
func OnsitePayment() PaymentDetails {
	return PaymentDetails{Method: PaymentOnsite}
}

// OnlinePayment builds the online branch with its proof reference.
func OnlinePayment(path, contentType string) PaymentDetails {
	return PaymentDetails{
		Method: PaymentOnline,
		Proof:  &PaymentProof{Path: path, ContentType: contentType},
	}
}

// Validate enforces the branch invariant: online requires a proof path,
// onsite must not carry one.
func (d PaymentDetails) Validate() error {
	switch d.Method {
	case PaymentOnsite:
		if d.Proof != nil {
			return dErrors.NewField("payment_proof", "proof not accepted for onsite payment")
		}
	case PaymentOnline:
		if d.Proof == nil || d.Proof.Path == "" {
			return dErrors.NewField("payment_proof", "proof of payment is required for online payment")
		}
	default:
		return dErrors.NewField("payment_method", "invalid payment method")
	}
	return nil
}
