package domain

import (
	"crypto/rand"
	"regexp"

	dErrors "gatepass/pkg/domain-errors"
)

// Identifier is the human-legible fallback printed under the QR artifact and
// stored on the registration row. It is opaque: no sequence or date is
// embedded, only prefix + random body.
type Identifier string

// identifierAlphabet is Crockford base32: no I, L, O, U, so the printed code
// survives being read aloud or retyped at the venue.
const identifierAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	identifierPrefix = "REG-"
	identifierBody   = 10
)

var identifierPattern = regexp.MustCompile(`^REG-[0-9ABCDEFGHJKMNPQRSTVWXYZ]{10}$`)

// NewIdentifier generates a collision-resistant registration identifier.
// 32^10 values make accidental collision negligible at this system's scale;
// the unique index on registrations.identifier backstops the rest.
func NewIdentifier() Identifier {
	buf := make([]byte, identifierBody)
	rand.Read(buf)
	body := make([]byte, identifierBody)
	for i, b := range buf {
		body[i] = identifierAlphabet[int(b)%len(identifierAlphabet)]
	}
	return Identifier(identifierPrefix + string(body))
}

// ParseIdentifier constructs an Identifier from external input.
//
// Errors: CodeInvalidInput when the value does not match the generator's
// shape. Malformed identifiers fail here and never reach storage.
func ParseIdentifier(s string) (Identifier, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier cannot be empty")
	}
	if !identifierPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid identifier")
	}
	return Identifier(s), nil
}

func (i Identifier) String() string { return string(i) }
