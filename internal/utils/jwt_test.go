package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedIssuer(secret string, at time.Time) *TokenIssuer {
	ti := NewTokenIssuer(secret, time.Hour)
	ti.now = func() time.Time { return at }
	return ti
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ti := fixedIssuer("secret", at)

	raw, expiresAt, err := ti.Issue(42, "ada")
	require.NoError(t, err)
	assert.Equal(t, at.Add(time.Hour), expiresAt)

	user, err := ti.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "ada", user.Username)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ti := fixedIssuer("secret", at)
	raw, _, err := ti.Issue(42, "ada")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := fixedIssuer("secret", at.Add(2*time.Hour))
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := fixedIssuer("other", at)
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS384, accessClaims{
			Username: "ada",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(at.Add(time.Hour)),
			},
		})
		signed, err := tok.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = ti.Parse(signed)
		assert.Error(t, err)
	})

	t.Run("bad subject", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Subject:   "ada",
				ExpiresAt: jwt.NewNumericDate(at.Add(time.Hour)),
			},
		})
		signed, err := tok.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = ti.Parse(signed)
		assert.ErrorContains(t, err, "subject")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ti.Parse("not-a-token")
		assert.Error(t, err)
	})
}
