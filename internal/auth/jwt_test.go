package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autobreezebeats/breeze-hub-go/internal/config"
)

func testAuthConfig() config.Config {
	return config.Config{
		JWTSecret:                "0123456789abcdef0123456789abcdef",
		PairingCode:              "123456",
		JWTAccessTokenExpirySec:  3600,
		JWTRefreshTokenExpirySec: 86400,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens(testAuthConfig())

	pair, err := tokens.Issue(Identity{ClientID: "client-1", ClientName: "kitchen-tablet"})
	require.NoError(t, err)
	require.Equal(t, 3600, pair.ExpiresIn)

	id, err := tokens.Verify(pair.Access)
	require.NoError(t, err)
	require.Equal(t, "client-1", id.ClientID)
	require.Equal(t, "kitchen-tablet", id.ClientName)
	require.Equal(t, TokenTypeAccess, id.Type)

	id, err = tokens.Verify(pair.Refresh)
	require.NoError(t, err)
	require.Equal(t, TokenTypeRefresh, id.Type)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	tokens := NewTokens(testAuthConfig())
	pair, err := tokens.Issue(Identity{ClientID: "client-1", ClientName: "tablet"})
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "ffffffffffffffffffffffffffffffff"
	_, err = NewTokens(otherCfg).Verify(pair.Access)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := NewTokens(testAuthConfig()).Verify("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshAccessToken(t *testing.T) {
	tokens := NewTokens(testAuthConfig())
	pair, err := tokens.Issue(Identity{ClientID: "client-1", ClientName: "tablet"})
	require.NoError(t, err)

	access, expiresIn, err := tokens.Refresh(pair.Refresh)
	require.NoError(t, err)
	require.Equal(t, 3600, expiresIn)

	id, err := tokens.Verify(access)
	require.NoError(t, err)
	require.Equal(t, TokenTypeAccess, id.Type)
	require.Equal(t, "client-1", id.ClientID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	tokens := NewTokens(testAuthConfig())
	pair, err := tokens.Issue(Identity{ClientID: "client-1", ClientName: "tablet"})
	require.NoError(t, err)

	_, _, err = tokens.Refresh(pair.Access)
	require.ErrorIs(t, err, ErrTokenType)
}

func TestExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTAccessTokenExpirySec = -60

	tokens := NewTokens(cfg)
	pair, err := tokens.Issue(Identity{ClientID: "client-1", ClientName: "tablet"})
	require.NoError(t, err)

	_, err = tokens.Verify(pair.Access)
	require.ErrorIs(t, err, ErrTokenExpired)
}
