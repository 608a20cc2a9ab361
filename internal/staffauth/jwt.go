package staffauth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"gatepass/internal/platform/middleware"
	dErrors "gatepass/pkg/domain-errors"
)

// Claims represents the JWT claims carried by staff bearer tokens. The
// identity provider in front of this service issues them; we only verify.
type Claims struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService validates staff tokens against a shared HMAC key.
type JWTService struct {
	signingKey []byte
}

func NewJWTService(signingKey string) *JWTService {
	return &JWTService{signingKey: []byte(signingKey)}
}

// ValidateToken verifies signature and expiry and extracts staff claims.
func (s *JWTService) ValidateToken(tokenString string) (*middleware.StaffClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.StaffID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no staff identity")
	}
	return &middleware.StaffClaims{StaffID: claims.StaffID, Email: claims.Email}, nil
}
