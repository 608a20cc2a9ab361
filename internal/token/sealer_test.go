package token

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(key)
}

func testSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealer(testKey(t))
	require.NoError(t, err)
	return s
}

func validPayload() Payload {
	return NewPayload("attendee@example.com", domain.NewRegistrationID(), domain.NewEventID())
}

func TestNewSealer(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewSealer("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeKeyMaterial))
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := NewSealer("%%%not-base64%%%")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeKeyMaterial))
	})

	t.Run("wrong length", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("too-short"))
		_, err := NewSealer(short)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeKeyMaterial))
	})

	t.Run("raw url encoding accepted", func(t *testing.T) {
		key := make([]byte, KeySize)
		_, err := rand.Read(key)
		require.NoError(t, err)
		_, err = NewSealer(base64.RawURLEncoding.EncodeToString(key))
		require.NoError(t, err)
	})
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s := testSealer(t)
	payload := validPayload()

	tok, err := s.Seal(payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "gp1."))

	got, err := s.Open(tok)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSeal_RejectsMalformedPayload(t *testing.T) {
	s := testSealer(t)

	cases := []struct {
		name    string
		payload Payload
	}{
		{"empty email", Payload{Email: "", RegistrationID: domain.NewRegistrationID().String(), EventID: domain.NewEventID().String()}},
		{"bad email", Payload{Email: "not-an-email", RegistrationID: domain.NewRegistrationID().String(), EventID: domain.NewEventID().String()}},
		{"bad registration id", Payload{Email: "a@b.co", RegistrationID: "123", EventID: domain.NewEventID().String()}},
		{"bad event id", Payload{Email: "a@b.co", RegistrationID: domain.NewRegistrationID().String(), EventID: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Seal(tc.payload)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenInvalid))
		})
	}
}

// TestOpen_TamperDetection flips bytes across the encoded token and expects
// every flip to fail authentication. Spot check of the AEAD integrity
// property, not an exhaustive proof.
func TestOpen_TamperDetection(t *testing.T) {
	s := testSealer(t)
	tok, err := s.Seal(validPayload())
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(tok, "gp1."))
	require.NoError(t, err)

	for i := 0; i < len(raw); i++ {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01
		forged := "gp1." + base64.RawURLEncoding.EncodeToString(mutated)

		_, err := s.Open(forged)
		require.Error(t, err, "flip at byte %d accepted", i)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenInvalid))
	}
}

func TestOpen_RejectsGarbage(t *testing.T) {
	s := testSealer(t)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no prefix", "AAAA"},
		{"wrong prefix", "jwt.AAAA"},
		{"prefix only", "gp1."},
		{"not base64", "gp1.!!!!"},
		{"truncated", "gp1.AAAA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Open(tc.token)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenInvalid))
		})
	}
}

func TestOpen_DifferentKeyFails(t *testing.T) {
	a := testSealer(t)
	b := testSealer(t)

	tok, err := a.Seal(validPayload())
	require.NoError(t, err)

	_, err = b.Open(tok)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenInvalid))
}

func TestSeal_TokensAreUnlinkable(t *testing.T) {
	s := testSealer(t)
	payload := validPayload()

	first, err := s.Seal(payload)
	require.NoError(t, err)
	second, err := s.Seal(payload)
	require.NoError(t, err)

	// Fresh nonce per Seal: identical payloads never produce identical tokens.
	assert.NotEqual(t, first, second)
}
