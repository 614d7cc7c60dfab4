package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)
	assert.True(t, IsHash(hash))

	ok, err := Compare("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Compare("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "plaintext", "$2a$10$short"} {
		ok, err := Compare("anything", hash)
		assert.Error(t, err, "hash %q", hash)
		assert.False(t, ok)
		assert.False(t, IsHash(hash))
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashToken("token-a"))
	assert.NotEqual(t, a, HashToken("token-b"))
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("longenough"))
	assert.True(t, ValidatePassword(strings.Repeat("a", MaxLength)))
	assert.False(t, ValidatePassword(strings.Repeat("a", MaxLength+1)))
}
