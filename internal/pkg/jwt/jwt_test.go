package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "MEMBER", "grace", "MODERATOR", "secret", 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.PrincipalID)
	assert.Equal(t, "MEMBER", claims.Kind)
	assert.Equal(t, "grace", claims.Username)
	assert.Equal(t, "MODERATOR", claims.Role)
	assert.Equal(t, "MEMBER:42", claims.Subject)
}

func TestAccessTokenRejections(t *testing.T) {
	token, err := GenerateAccessToken(1, "ADMIN", "root", "", "secret", 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expired, err := GenerateAccessToken(1, "ADMIN", "root", "", "secret", -1)
	require.NoError(t, err)
	_, err = ValidateAccessToken(expired, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ValidateAccessToken("not-a-token", "secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "ADMIN", "token-id", "refresh", 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, "refresh")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.PrincipalID)
	assert.Equal(t, "ADMIN", claims.Kind)
	assert.Equal(t, "token-id", claims.TokenID)
}
