package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cr3t-password")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "s3cr3t-password"))
	assert.Error(t, CheckPassword(hash, "wrong"))

	var h BcryptHasher
	assert.NoError(t, h.Compare(hash, "s3cr3t-password"))
}

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)

	token, err := m.GenerateToken("user-1", "Alex@Example.COM")
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alex@example.com", claims.Email)
}

func TestJWTManagerRejectsOtherSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Minute).GenerateToken("user-1", "a@b.io")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Minute).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManagerRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := m.GenerateToken("user-1", "a@b.io")
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
