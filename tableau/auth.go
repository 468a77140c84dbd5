package tableau

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type signInRequest struct {
	Credentials struct {
		JWT  string `json:"jwt"`
		Site struct {
			ContentURL string `json:"contentUrl"`
		} `json:"site"`
	} `json:"credentials"`
}

type signInResponse struct {
	Credentials *struct {
		Site struct {
			ID         string `json:"id"`
			ContentURL string `json:"contentUrl"`
		} `json:"site"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	} `json:"credentials"`
}

// SignIn exchanges a signed Connected App JWT for a session token and the
// LUID of the site the session is scoped to.
func (c *Client) SignIn(ctx context.Context, jwt string) (*Credentials, error) {
	endpoint := c.restURL("auth/signin")

	var payload signInRequest
	payload.Credentials.JWT = jwt
	payload.Credentials.Site.ContentURL = c.site

	start := time.Now()
	status, body, err := c.postJSON(ctx, endpoint, "", payload)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("sign-in request failed")
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		authErr := &AuthenticationError{StatusCode: status, Body: excerpt(body)}
		log.Error().Str("endpoint", endpoint).Int("status", status).Str("body", authErr.Body).
			Dur("elapsed", time.Since(start)).Msg("sign-in rejected")
		return nil, authErr
	}

	var decoded signInResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		parseErr := &ResponseParseError{Endpoint: endpoint, Err: err}
		log.Error().Err(err).Str("endpoint", endpoint).Str("body", excerpt(body)).Msg("sign-in response undecodable")
		return nil, parseErr
	}
	if decoded.Credentials == nil || decoded.Credentials.Token == "" {
		parseErr := &ResponseParseError{Endpoint: endpoint, Err: fmt.Errorf("missing credentials.token")}
		log.Error().Str("endpoint", endpoint).Str("body", excerpt(body)).Msg("sign-in response missing token")
		return nil, parseErr
	}
	if decoded.Credentials.Site.ID == "" {
		parseErr := &ResponseParseError{Endpoint: endpoint, Err: fmt.Errorf("missing credentials.site.id")}
		log.Error().Str("endpoint", endpoint).Str("body", excerpt(body)).Msg("sign-in response missing site id")
		return nil, parseErr
	}

	log.Info().Str("endpoint", endpoint).Str("site_id", decoded.Credentials.Site.ID).
		Dur("elapsed", time.Since(start)).Msg("signed in")

	return &Credentials{
		Token:          decoded.Credentials.Token,
		SiteID:         decoded.Credentials.Site.ID,
		SiteContentURL: decoded.Credentials.Site.ContentURL,
		UserID:         decoded.Credentials.User.ID,
	}, nil
}
