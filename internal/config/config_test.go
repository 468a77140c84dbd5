package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dataops-tools/tableau-fetch/internal/config"
)

var requiredVars = []string{
	config.ClientIDVar,
	config.SecretKeyVar,
	config.SecretIDVar,
	config.UserVar,
	config.PodVar,
	config.SiteVar,
	config.APIVersionVar,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range requiredVars {
		t.Setenv(v, "")
	}
	t.Setenv(config.Project1Var, "")
	t.Setenv(config.Project2Var, "")
	t.Setenv(config.HTTPTimeoutVar, "")
	t.Setenv(config.InsecureSkipVerifyVar, "")
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(config.ClientIDVar, "client-123")
	t.Setenv(config.SecretKeyVar, "s3cret")
	t.Setenv(config.SecretIDVar, "secret-id-456")
	t.Setenv(config.UserVar, "analyst@example.com")
	t.Setenv(config.PodVar, "10ax.online.tableau.com")
	t.Setenv(config.SiteVar, "finance")
	t.Setenv(config.APIVersionVar, "3.22")
}

func TestLoad(t *testing.T) {
	t.Run("all required missing reports the full set", func(t *testing.T) {
		clearEnv(t)

		_, err := config.Load()
		require.Error(t, err)

		var missing *config.MissingVarsError
		require.True(t, errors.As(err, &missing))
		require.ElementsMatch(t, requiredVars, missing.Vars)
	})

	t.Run("reports only the missing keys", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv(config.SecretKeyVar, "")
		t.Setenv(config.UserVar, "")

		_, err := config.Load()
		var missing *config.MissingVarsError
		require.True(t, errors.As(err, &missing))
		require.ElementsMatch(t, []string{config.SecretKeyVar, config.UserVar}, missing.Vars)
	})

	t.Run("loads required values with defaults", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)

		cfg, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, "client-123", cfg.ClientID)
		require.Equal(t, "s3cret", cfg.SecretKey)
		require.Equal(t, "secret-id-456", cfg.SecretID)
		require.Equal(t, "analyst@example.com", cfg.User)
		require.Equal(t, "10ax.online.tableau.com", cfg.Pod)
		require.Equal(t, "finance", cfg.Site)
		require.Equal(t, "3.22", cfg.APIVersion)
		require.Empty(t, cfg.Projects)
		require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
		require.False(t, cfg.InsecureSkipVerify)
	})

	t.Run("collects project filters", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv(config.Project1Var, "Sales")
		t.Setenv(config.Project2Var, "Ops")

		cfg, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, []string{"Sales", "Ops"}, cfg.Projects)
	})

	t.Run("single project filter", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv(config.Project2Var, "Ops")

		cfg, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, []string{"Ops"}, cfg.Projects)
	})

	t.Run("parses timeout override", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv(config.HTTPTimeoutVar, "5s")

		cfg, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	})

	t.Run("rejects malformed timeout", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv(config.HTTPTimeoutVar, "fast")

		_, err := config.Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), config.HTTPTimeoutVar)
	})

	t.Run("insecure skip verify is opt-in", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv(config.InsecureSkipVerifyVar, "true")

		cfg, err := config.Load()
		require.NoError(t, err)
		require.True(t, cfg.InsecureSkipVerify)
	})
}
