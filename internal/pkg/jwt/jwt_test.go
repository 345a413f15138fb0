package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("user-1", "alice", "manager", testSecret, time.Minute)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken("user-1", "alice", "manager", "tok-1", testSecret, time.Minute)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tok-1", claims.TokenID)
	assert.Equal(t, TypeRefresh, claims.Type)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateAccessToken("user-1", "alice", "employee", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := GenerateAccessToken("user-1", "alice", "employee", testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokenCannotAuthenticate(t *testing.T) {
	token, err := GenerateRefreshToken("user-1", "alice", "employee", "tok-1", testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	token, err := GenerateAccessToken("user-1", "alice", "employee", testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(token, testSecret)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
