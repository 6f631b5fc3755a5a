package auth

import (
	"testing"
	"time"

	"github.com/safebox/gallery/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager() *SessionManager {
	return NewSessionManager("test-secret-key", 240*time.Hour)
}

func TestIssueAndVerifyToken(t *testing.T) {
	mgr := newTestSessionManager()

	token, err := mgr.IssueToken("admin@sample.com", "Admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@sample.com", claims.Subject)
	assert.Equal(t, "Admin", claims.Name)
}

func TestTokenEmbedsConfiguredExpiry(t *testing.T) {
	mgr := NewSessionManager("secret", 240*time.Hour)

	token, err := mgr.IssueToken("admin@sample.com", "")
	require.NoError(t, err)

	claims, err := mgr.VerifyToken(token)
	require.NoError(t, err)

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 240*time.Hour, lifetime)
}

func TestWrongSecretRejected(t *testing.T) {
	mgr1 := NewSessionManager("secret-1", time.Hour)
	mgr2 := NewSessionManager("secret-2", time.Hour)

	token, err := mgr1.IssueToken("admin@sample.com", "")
	require.NoError(t, err)

	_, err = mgr2.VerifyToken(token)
	require.Error(t, err)

	appErr, ok := err.(*domain.AppError)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewSessionManager("secret", 1*time.Millisecond)

	token, err := mgr.IssueToken("admin@sample.com", "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = mgr.VerifyToken(token)
	require.Error(t, err)

	appErr, ok := err.(*domain.AppError)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
}

func TestMalformedTokenRejected(t *testing.T) {
	mgr := newTestSessionManager()

	for _, garbage := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := mgr.VerifyToken(garbage)
		require.Error(t, err)

		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, "TOKEN_INVALID", appErr.Code)
	}
}
