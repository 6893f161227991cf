package auth

import (
	"campus-market/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-1234"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	req := require.New(t)
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	req.NoError(err)

	token, err := issuer.GenerateToken(TokenRequest{UserID: "buyer-1"})
	req.NoError(err)

	claims, err := issuer.ValidateToken(token)
	req.NoError(err)
	req.Equal("buyer-1", claims.UserID)
	req.Equal([]string{RoleStudent}, claims.Roles)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	req := require.New(t)
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	req.NoError(err)

	t.Run("short secret", func(t *testing.T) {
		_, err := NewTokenIssuer("short", time.Hour)
		require.ErrorIs(t, err, errors.ErrInvalidArgument)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := issuer.GenerateToken(TokenRequest{})
		require.ErrorIs(t, err, errors.ErrInvalidArgument)

		_, err = issuer.GenerateToken(TokenRequest{UserID: "u-1", Roles: []string{"root"}})
		require.ErrorIs(t, err, errors.ErrInvalidArgument)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := issuer.GenerateToken(TokenRequest{UserID: "buyer-1"})
		require.NoError(t, err)

		later := *issuer
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.ValidateToken(token)
		require.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenIssuer(testSecret+"-other", time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken(TokenRequest{UserID: "buyer-1"})
		require.NoError(t, err)

		_, err = issuer.ValidateToken(token)
		require.Error(t, err)
	})
}
