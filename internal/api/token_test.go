package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewTokenManager("  ")
		assert.Error(t, err)
	})

	t.Run("sign and parse round trip", func(t *testing.T) {
		m, err := NewTokenManager("secret")
		require.NoError(t, err)

		token, err := m.Sign("user-1", "jess@example.com", time.Hour)
		require.NoError(t, err)

		claims, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "jess@example.com", claims.Email)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		signer, err := NewTokenManager("secret-a")
		require.NoError(t, err)
		verifier, err := NewTokenManager("secret-b")
		require.NoError(t, err)

		token, err := signer.Sign("user-1", "jess@example.com", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		m, err := NewTokenManager("secret")
		require.NoError(t, err)
		m.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }

		token, err := m.Sign("user-1", "jess@example.com", time.Hour)
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
