// Package token builds the short-lived JWT a Tableau Connected App exchanges
// for a session token.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultExpiry is the lifetime of a Connected App JWT. Tableau rejects
// tokens valid for more than ten minutes.
const DefaultExpiry = 5 * time.Minute

// Scopes granted to the session minted from the JWT.
var Scopes = []string{
	"tableau:views:embed",
	"tableau:insights:embed",
	"tableau:content:read",
}

// Creator handles Connected App JWT creation.
type Creator struct {
	clientID string
	secretID string
	expiry   time.Duration
}

// NewCreator creates a JWT creator for the given Connected App client. A
// non-positive expiry falls back to DefaultExpiry.
func NewCreator(clientID, secretID string, expiry time.Duration) *Creator {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Creator{
		clientID: clientID,
		secretID: secretID,
		expiry:   expiry,
	}
}

// Create builds and signs a JWT asserting the identity of user. The secret ID
// travels in the "kid" header so the server can pick the right secret to
// verify with.
func (c *Creator) Create(user string, signer Signer) (string, error) {
	now := NowTimeFunc()
	claims := jwt.MapClaims{
		"iss": c.clientID,            // the Connected App client ID
		"sub": user,                  // the Tableau user the session is for
		"aud": "tableau",             // fixed audience for Connected Apps
		"jti": uuid.New().String(),   // unique token ID, server rejects replays
		"iat": now.Unix(),            // issued at
		"exp": now.Add(c.expiry).Unix(),
		"scp": Scopes,
	}
	headers := map[string]any{
		"kid": c.secretID,
		"iss": c.clientID,
	}
	return signer.Sign(claims, headers)
}
