package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)

	tok, err := m.Issue("user-1")
	require.NoError(t, err)

	uid, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	issuedAt := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	m := NewTokenManager("s3cret", time.Hour)
	m.now = func() time.Time { return issuedAt }

	tok, err := m.Issue("user-1")
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsOtherSecret(t *testing.T) {
	tok, err := NewTokenManager("one", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsUnsignedToken(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "user-1",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("s3cret", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("s3cret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
