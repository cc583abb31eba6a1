package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("test-secret"), TTL: time.Hour}
	token, exp, err := m.IssueToken("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestJWTManager_MissingSecret(t *testing.T) {
	t.Parallel()

	m := &JWTManager{TTL: time.Hour}
	_, _, err := m.IssueToken("user-1")
	assert.ErrorIs(t, err, ErrTokenIssuance)
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("test-secret"), TTL: time.Hour}
	token, _, err := m.IssueToken("user-1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := &JWTManager{Secret: []byte("other-secret"), TTL: time.Hour}
		_, err := other.VerifyToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := m.VerifyToken(token + "x")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		later := &JWTManager{Secret: m.Secret, TTL: m.TTL, now: func() time.Time { return time.Now().Add(2 * time.Hour) }}
		_, err := later.VerifyToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.VerifyToken(s)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
