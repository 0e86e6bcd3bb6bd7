package service

import (
	"strings"
	"studylab-api/config"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "studylab-api",
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	codec := NewTokenService(testJWTConfig())
	userID := uuid.NewString()

	access, err := codec.IssueAccess(userID)
	require.NoError(t, err)
	claims, err := codec.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Empty(t, claims.Type)

	refresh, err := codec.IssueRefresh(userID)
	require.NoError(t, err)
	claims, err = codec.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "refresh", claims.Type)
}

func TestTokenService_TokensAreUniqueWithinOneSecond(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenService(testJWTConfig()).WithClock(func() time.Time { return fixed })
	userID := uuid.NewString()

	first, err := codec.IssueRefresh(userID)
	require.NoError(t, err)
	second, err := codec.IssueRefresh(userID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenService_TokenKindsAreNotInterchangeable(t *testing.T) {
	codec := NewTokenService(testJWTConfig())
	userID := uuid.NewString()

	access, err := codec.IssueAccess(userID)
	require.NoError(t, err)
	refresh, err := codec.IssueRefresh(userID)
	require.NoError(t, err)

	_, err = codec.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = codec.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_WrongSecret(t *testing.T) {
	codec := NewTokenService(testJWTConfig())
	other := testJWTConfig()
	other.AccessSecret = "some-other-secret"
	foreign := NewTokenService(other)

	token, err := foreign.IssueAccess(uuid.NewString())
	require.NoError(t, err)

	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	codec := NewTokenService(testJWTConfig()).WithClock(func() time.Time { return now })

	access, err := codec.IssueAccess(uuid.NewString())
	require.NoError(t, err)

	now = now.Add(14 * time.Minute)
	_, err = codec.VerifyAccess(access)
	assert.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = codec.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_RejectsMalformedAndUnsignedTokens(t *testing.T) {
	codec := NewTokenService(testJWTConfig())

	_, err := codec.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// Tampered payload.
	valid, err := codec.IssueAccess(uuid.NewString())
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "AA"
	_, err = codec.VerifyAccess(strings.Join(parts, "."))
	assert.Error(t, err)
}
