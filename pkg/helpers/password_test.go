package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_SaltsEachCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("pw123456")
	require.NoError(t, err)
	h2, err := HashPassword("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NotContains(t, h1, "pw123456")
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw123456")
	require.NoError(t, err)

	ok, err := VerifyPassword("pw123456", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyPassword("pw123456", "not-a-bcrypt-hash")
	assert.ErrorIs(t, err, ErrVerification)
	assert.False(t, ok)

	assert.True(t, CompareHashAndPassword(hash, "pw123456"))
	assert.False(t, CompareHashAndPassword("garbage", "pw123456"))
}
