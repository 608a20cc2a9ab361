package staffauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

const testSigningKey = "test-signing-key"

func signedToken(t *testing.T, claims Claims, key string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := NewJWTService(testSigningKey)

	t.Run("valid token", func(t *testing.T) {
		tok := signedToken(t, Claims{
			StaffID: "staff-1",
			Email:   "door@venue.example",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, testSigningKey)

		claims, err := svc.ValidateToken(tok)
		require.NoError(t, err)
		assert.Equal(t, "staff-1", claims.StaffID)
		assert.Equal(t, "door@venue.example", claims.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := signedToken(t, Claims{
			StaffID: "staff-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}, testSigningKey)

		_, err := svc.ValidateToken(tok)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong key", func(t *testing.T) {
		tok := signedToken(t, Claims{StaffID: "staff-1"}, "some-other-key")
		_, err := svc.ValidateToken(tok)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("missing staff id", func(t *testing.T) {
		tok := signedToken(t, Claims{}, testSigningKey)
		_, err := svc.ValidateToken(tok)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-jwt")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
