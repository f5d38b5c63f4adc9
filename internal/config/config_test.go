package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRADER_PROVIDER", "mock")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "mock", cfg.Provider)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, 120*time.Second, cfg.Timeout)
	require.Equal(t, 2, cfg.MaxRetries)
	require.Equal(t, "results", cfg.ResultsDir)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GRADER_PROVIDER", "ANTHROPIC")
	t.Setenv("GRADER_ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("GRADER_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("GRADER_TIMEOUT", "30s")
	t.Setenv("GRADER_MAX_RETRIES", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "anthropic", cfg.Provider)
	require.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, "sk-test", cfg.APIKey())
}

func TestLoadRejectsMissingKey(t *testing.T) {
	t.Setenv("GRADER_PROVIDER", "openai")
	t.Setenv("GRADER_OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GRADER_OPENAI_API_KEY")
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Config{Provider: "bard"}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bard")
}

func TestValidateAllowsMockWithoutKeys(t *testing.T) {
	cfg := Config{Provider: "mock"}
	require.NoError(t, cfg.Validate())
}

func TestHTTPAddress(t *testing.T) {
	require.Equal(t, ":9090", Config{AppPort: "9090"}.HTTPAddress())
	require.Equal(t, ":9090", Config{AppPort: ":9090"}.HTTPAddress())
}
