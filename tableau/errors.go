package tableau

import (
	"fmt"
	"strings"
)

// bodyExcerptLimit bounds how much of a response body is carried inside an
// error value and written to logs.
const bodyExcerptLimit = 512

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyExcerptLimit {
		return s[:bodyExcerptLimit] + "..."
	}
	return s
}

// TransportError indicates the request never completed: DNS failure, refused
// connection, timeout. Potentially transient, but this client never retries.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError indicates the sign-in endpoint rejected the JWT with a
// non-2xx status.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("sign-in rejected (status %d): %s", e.StatusCode, e.Body)
}

// RequestError indicates a content endpoint returned a non-2xx status after a
// successful sign-in.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// GraphQLError indicates the metadata endpoint answered 200 but reported
// query-level errors in the response's errors array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql query failed: %s", strings.Join(e.Messages, "; "))
}

// ResponseParseError indicates a response body that could not be decoded or
// was missing an expected field.
type ResponseParseError struct {
	Endpoint string
	Err      error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Endpoint, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }
