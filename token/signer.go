package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SigningError indicates the JWT could not be constructed or signed with the
// configured secret. It is a local configuration problem, not a server one.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("token signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// Signer signs a set of JWT claims.
type Signer interface {
	// Sign creates a signed JWT from claims, with extra header fields merged
	// into the token header.
	Sign(claims jwt.MapClaims, headers map[string]any) (string, error)
}

// HMACSigner implements Signer using symmetric HMAC-SHA256, the algorithm
// Tableau Connected Apps use for secret-key credentials.
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner creates a new HMAC signer with the given secret.
func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{
		secret: []byte(secret),
	}
}

func (h *HMACSigner) Sign(claims jwt.MapClaims, headers map[string]any) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	for k, v := range headers {
		tok.Header[k] = v
	}
	signed, err := tok.SignedString(h.secret)
	if err != nil {
		return "", &SigningError{Err: err}
	}
	return signed, nil
}
