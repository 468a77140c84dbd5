// Package config loads the Tableau Connected App settings from the process
// environment into an immutable Config value. Nothing outside this package
// reads environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names for required settings.
const (
	ClientIDVar   = "CONNECTED_APP_CLIENT_ID"
	SecretKeyVar  = "CONNECTED_APP_SECRET_KEY"
	SecretIDVar   = "CONNECTED_APP_SECRET_ID"
	UserVar       = "TABLEAU_USER"
	PodVar        = "TABLEAU_POD"
	SiteVar       = "TABLEAU_SITE"
	APIVersionVar = "TABLEAU_API_VERSION"
)

// Environment variable names for optional settings.
const (
	Project1Var           = "TABLEAU_PROJECT_1"
	Project2Var           = "TABLEAU_PROJECT_2"
	HTTPTimeoutVar        = "TABLEAU_HTTP_TIMEOUT"
	InsecureSkipVerifyVar = "TABLEAU_INSECURE_SKIP_VERIFY"
)

const defaultHTTPTimeout = 30 * time.Second

// Config holds everything a single invocation needs. It is built once by Load
// and never mutated afterwards.
type Config struct {
	// Connected App credentials
	ClientID  string
	SecretKey string
	SecretID  string

	// Identity of the Tableau user the session is minted for
	User string

	// Endpoint settings
	Pod        string // hostname of the Tableau pod, e.g. "10ax.online.tableau.com"
	Site       string // site content URL (the site's URL namespace)
	APIVersion string // REST API version, e.g. "3.22"

	// Optional project-name filters for workbook queries
	Projects []string

	// HTTPTimeout bounds every outbound request. Defaults to 30s.
	HTTPTimeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification. Off unless
	// explicitly enabled; callers are expected to log when it is on.
	InsecureSkipVerify bool
}

// MissingVarsError reports every required environment variable that was absent
// or empty. Load collects the full set before failing rather than stopping at
// the first.
type MissingVarsError struct {
	Vars []string
}

func (e *MissingVarsError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Vars, ", "))
}

// Load reads the environment and returns the configuration. If any required
// variable is missing the returned error is a *MissingVarsError naming all of
// them.
func Load() (*Config, error) {
	required := map[string]string{
		ClientIDVar:   os.Getenv(ClientIDVar),
		SecretKeyVar:  os.Getenv(SecretKeyVar),
		SecretIDVar:   os.Getenv(SecretIDVar),
		UserVar:       os.Getenv(UserVar),
		PodVar:        os.Getenv(PodVar),
		SiteVar:       os.Getenv(SiteVar),
		APIVersionVar: os.Getenv(APIVersionVar),
	}

	var missing []string
	for _, name := range []string{ClientIDVar, SecretKeyVar, SecretIDVar, UserVar, PodVar, SiteVar, APIVersionVar} {
		if required[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingVarsError{Vars: missing}
	}

	cfg := &Config{
		ClientID:    required[ClientIDVar],
		SecretKey:   required[SecretKeyVar],
		SecretID:    required[SecretIDVar],
		User:        required[UserVar],
		Pod:         required[PodVar],
		Site:        required[SiteVar],
		APIVersion:  required[APIVersionVar],
		HTTPTimeout: defaultHTTPTimeout,
	}

	for _, v := range []string{Project1Var, Project2Var} {
		if p := os.Getenv(v); p != "" {
			cfg.Projects = append(cfg.Projects, p)
		}
	}

	if raw := os.Getenv(HTTPTimeoutVar); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", HTTPTimeoutVar, raw, err)
		}
		cfg.HTTPTimeout = d
	}

	if raw := os.Getenv(InsecureSkipVerifyVar); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", InsecureSkipVerifyVar, raw, err)
		}
		cfg.InsecureSkipVerify = b
	}

	return cfg, nil
}
