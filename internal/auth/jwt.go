package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/safebox/gallery/internal/domain"
)

// Claims holds the custom JWT claims for an admin session. The subject is
// the admin email; the token is a self-contained bearer credential with no
// server-side state, so logout is advisory and a token stays valid until
// its embedded expiry.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// SessionManager issues and verifies signed session tokens.
type SessionManager struct {
	secret []byte
	expiry time.Duration
}

// NewSessionManager creates a session manager with the given signing secret
// and token lifetime.
func NewSessionManager(secret string, expiry time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), expiry: expiry}
}

// Expiry returns the configured token lifetime.
func (m *SessionManager) Expiry() time.Duration { return m.expiry }

// IssueToken creates a signed session token for the given admin.
func (m *SessionManager) IssueToken(email, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			ID:        uuid.New().String(),
		},
		Name: name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken parses and validates a session token. An expired token fails
// with TOKEN_EXPIRED even when the signature is valid; any other parse or
// signature failure is TOKEN_INVALID.
func (m *SessionManager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired()
		}
		return nil, domain.ErrTokenInvalid()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid()
	}

	return claims, nil
}
