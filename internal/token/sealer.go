package token

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	dErrors "gatepass/pkg/domain-errors"
)

// tokenPrefix is the self-describing algorithm header. A new scheme gets a
// new prefix; Open rejects anything it does not recognize.
const tokenPrefix = "gp1."

// KeySize is the required key length in bytes, before base64 encoding.
const KeySize = chacha20poly1305.KeySize

// Sealer turns registration payloads into opaque authenticated-encrypted
// token strings and back. It is the single trust boundary between claims
// presented by a scanned QR code and claims the system acts on.
//
// The key is read-only after construction; a Sealer is safe for unlimited
// concurrent Seal/Open calls.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a base64-encoded 32-byte secret.
//
// Errors: CodeKeyMaterial when the secret is absent, not base64, or does not
// decode to exactly 32 bytes. Callers treat this as fatal at startup.
func NewSealer(encodedKey string) (*Sealer, error) {
	if encodedKey == "" {
		return nil, dErrors.New(dErrors.CodeKeyMaterial, "token key is not configured")
	}
	key, err := decodeKey(encodedKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeKeyMaterial, "token key is not valid base64")
	}
	if len(key) != KeySize {
		return nil, dErrors.Newf(dErrors.CodeKeyMaterial, "token key must be %d bytes, got %d", KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeKeyMaterial, "could not initialize cipher")
	}
	return &Sealer{aead: aead}, nil
}

func decodeKey(s string) ([]byte, error) {
	if key, err := base64.StdEncoding.DecodeString(s); err == nil {
		return key, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// Seal validates the payload and encrypts it into an opaque token string.
// Output shape: "gp1." + base64url(nonce || ciphertext). The string is safe
// to embed in a QR bitmap and as plain text under it.
func (s *Sealer) Seal(payload Payload) (string, error) {
	if err := payload.Validate(); err != nil {
		return "", err
	}
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open authenticates and decrypts a token, then re-validates the payload
// against the same schema Seal used.
//
// Contract: fail closed. Any failure - unknown prefix, bad encoding, AEAD
// authentication, schema violation - returns CodeTokenInvalid and a zero
// Payload. A partially trusted payload is never returned. Crypto failures
// and schema failures carry distinct messages so staff tooling can tell
// a forged/corrupted code from a well-formed-but-stale one.
func (s *Sealer) Open(token string) (Payload, error) {
	raw, ok := strings.CutPrefix(token, tokenPrefix)
	if !ok {
		return Payload{}, dErrors.New(dErrors.CodeTokenInvalid, "unrecognized token format")
	}
	sealed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Payload{}, dErrors.New(dErrors.CodeTokenInvalid, "token is not valid base64")
	}
	if len(sealed) < s.aead.NonceSize() {
		return Payload{}, dErrors.New(dErrors.CodeTokenInvalid, "token is truncated")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Payload{}, dErrors.New(dErrors.CodeTokenInvalid, "token failed authentication")
	}
	var payload Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return Payload{}, dErrors.New(dErrors.CodeTokenInvalid, "token payload is not well formed")
	}
	if err := payload.Validate(); err != nil {
		return Payload{}, err
	}
	return payload, nil
}
