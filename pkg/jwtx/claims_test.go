package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "directory",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("directory"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("chat-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		exp     time.Time
		nbf     time.Time
		leeway  time.Duration
		wantErr error
	}{
		{"valid", now.Add(time.Minute), now.Add(-time.Minute), 0, nil},
		{"expired", now.Add(-time.Minute), now.Add(-time.Hour), 0, jwtx.ErrExpired},
		{"expired within leeway", now.Add(-time.Second), now.Add(-time.Hour), 5 * time.Second, nil},
		{"not yet valid", now.Add(time.Hour), now.Add(time.Minute), 0, jwtx.ErrNotYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(tt.exp),
				NotBefore: jwt.NewNumericDate(tt.nbf),
			}}
			err := c.ValidateExpiryWithLeeway(now, tt.leeway)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewSessionClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewSessionClaims("user-1", "sid-1", "admin", "a@x.com", "Alex", time.Hour, "directory", now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "sid-1", c.SID)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
	require.Equal(t, time.Hour, c.TTL(now))

	d := jwtx.NewSessionClaims("user-1", "sid-1", "user", "", "", 0, "", now)
	require.Equal(t, now.Add(jwtx.DefaultSessionTTL), d.ExpiresAt.Time)
	require.NotEqual(t, c.ID, d.ID)
}
