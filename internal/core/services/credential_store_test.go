package services

import (
	"strings"
	"testing"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	store := NewCredentialStore()

	hash, err := store.HashPassword("s3cret-psalm")
	require.NoError(t, err)

	ok, err := store.VerifyPassword("s3cret-psalm", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := store.HashPassword("s3cret-psalm")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	store := NewCredentialStore()

	for _, hash := range []string{"", "not-a-hash"} {
		ok, err := store.VerifyPassword("anything", hash)
		assert.False(t, ok)

		var credErr *domain.CredentialError
		assert.ErrorAs(t, err, &credErr, "hash %q", hash)
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	store := NewCredentialStore()

	_, err := store.HashPassword(strings.Repeat("x", 73))
	var credErr *domain.CredentialError
	assert.ErrorAs(t, err, &credErr)

	_, err = store.HashPassword(strings.Repeat("x", 72))
	assert.NoError(t, err)
}

func TestSetPassword(t *testing.T) {
	store := NewCredentialStore()
	member := &models.Member{Username: "ruth"}

	require.NoError(t, store.SetPassword(member, "first-password"))
	first := member.PasswordHash
	assert.NotEqual(t, "first-password", first)

	ok, err := store.Authenticate(member, "first-password")
	require.NoError(t, err)
	assert.True(t, ok)

	// passing the stored hash back leaves it untouched
	require.NoError(t, store.SetPassword(member, first))
	assert.Equal(t, first, member.PasswordHash)

	require.NoError(t, store.SetPassword(member, "second-password"))
	assert.NotEqual(t, first, member.PasswordHash)

	ok, err = store.Authenticate(member, "first-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPhoneVerificationState(t *testing.T) {
	store := NewCredentialStore()
	admin := &models.Admin{PhoneCodeAttempts: 3}

	expires := time.Now().Add(time.Minute)
	store.SetPhoneVerificationCode(admin, "123456", expires)
	require.NotNil(t, admin.PhoneVerificationCode)
	assert.Equal(t, "123456", *admin.PhoneVerificationCode)
	assert.Equal(t, 0, admin.PhoneCodeAttempts)

	store.MarkPhoneVerified(admin)
	assert.True(t, admin.IsPhoneVerified)
	assert.Nil(t, admin.PhoneVerificationCode)
	assert.Nil(t, admin.PhoneCodeExpiresAt)
}
