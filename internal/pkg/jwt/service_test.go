package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestHMACService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	tok, err := svc.GenerateAccessToken(userID, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, TokenTypeAccess, claims.TokenType)
	require.False(t, svc.IsRefreshToken(claims))
}

func TestHMACService_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	tok, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Empty(t, claims.Email)
	require.True(t, svc.IsRefreshToken(claims))
}

func TestHMACService_ExpiredToken(t *testing.T) {
	svc := newTestService()
	issued := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	tok, err := svc.GenerateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(16 * time.Minute) }

	_, err = svc.ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_WrongSecret(t *testing.T) {
	svc := newTestService()
	tok, err := svc.GenerateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	other := NewHMACService("different-access", "different-refresh", 15*time.Minute, 24*time.Hour)
	_, err = other.ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_GarbageToken(t *testing.T) {
	svc := newTestService()
	_, err := svc.ValidateToken("not.a.jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
