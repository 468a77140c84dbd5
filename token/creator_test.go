package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dataops-tools/tableau-fetch/token"
)

const testSecret = "top-secret-key"

func TestCreator_Create(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return fixed }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	creator := token.NewCreator("client-123", "secret-id-456", 5*time.Minute)
	signed, err := creator.Create("analyst@example.com", token.NewHMACSigner(testSecret))
	require.NoError(t, err)

	parser := jwtlib.NewParser(jwtlib.WithoutClaimsValidation())
	parsed, err := parser.Parse(signed, func(tok *jwtlib.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	require.True(t, ok)

	t.Run("identity claims match config", func(t *testing.T) {
		require.Equal(t, "client-123", claims["iss"])
		require.Equal(t, "analyst@example.com", claims["sub"])
		require.Equal(t, "tableau", claims["aud"])
	})

	t.Run("expiry is the configured window", func(t *testing.T) {
		require.Equal(t, float64(fixed.Unix()), claims["iat"])
		require.Equal(t, float64(fixed.Add(5*time.Minute).Unix()), claims["exp"])
	})

	t.Run("nonce is present", func(t *testing.T) {
		require.NotEmpty(t, claims["jti"])
	})

	t.Run("scopes are carried", func(t *testing.T) {
		scopes, ok := claims["scp"].([]any)
		require.True(t, ok)
		require.Len(t, scopes, len(token.Scopes))
		require.Contains(t, scopes, "tableau:content:read")
	})

	t.Run("header identifies the secret", func(t *testing.T) {
		require.Equal(t, "secret-id-456", parsed.Header["kid"])
		require.Equal(t, "client-123", parsed.Header["iss"])
		require.Equal(t, "HS256", parsed.Header["alg"])
	})
}

func TestCreator_DefaultExpiry(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return fixed }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	// Zero expiry falls back to the default window
	creator := token.NewCreator("client-123", "secret-id-456", 0)
	signed, err := creator.Create("analyst@example.com", token.NewHMACSigner(testSecret))
	require.NoError(t, err)

	parser := jwtlib.NewParser(jwtlib.WithoutClaimsValidation())
	parsed, err := parser.Parse(signed, func(tok *jwtlib.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwtlib.MapClaims)
	require.Equal(t, float64(fixed.Add(token.DefaultExpiry).Unix()), claims["exp"])
}
