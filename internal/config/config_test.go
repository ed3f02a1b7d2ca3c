package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.35, cfg.Scoring.Weights.Skills)
	assert.Equal(t, 0.25, cfg.Scoring.Weights.Experience)
	assert.Equal(t, 0.15, cfg.Scoring.Weights.Location)
	assert.Equal(t, 0.10, cfg.Scoring.Weights.Culture)
	assert.Equal(t, 0.15, cfg.Scoring.Weights.Salary)
	assert.Equal(t, 10, cfg.BackgroundTasks.MaxConcurrentTasks)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
scoring:
  weights:
    skills: 0.5
    experience: 0.2
    location: 0.1
    culture: 0.1
    salary: 0.1
  max_reasons: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Skills)
	assert.Equal(t, 5, cfg.Scoring.MaxReasons)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfigRejectsBadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
scoring:
  weights:
    skills: 0.5
    experience: 0.5
    location: 0.5
    culture: 0.0
    salary: 0.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights must sum to 1.0")
}

func TestValidateRejectsNegativeWeight(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.Scoring.Weights.Skills = -0.1
	cfg.Scoring.Weights.Experience = 0.7

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestValidateDisablesNotifyWithoutWebhook(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.Notify.Enabled = true
	cfg.Notify.WebhookURL = ""

	require.NoError(t, cfg.validate())
	assert.False(t, cfg.Notify.Enabled)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TALENTFLOW_TEST_DSN", "postgres://test")

	assert.Equal(t, "dsn: postgres://test", expandEnvVars("dsn: ${TALENTFLOW_TEST_DSN}"))
	assert.Equal(t, "dsn: postgres://test", expandEnvVars("dsn: $TALENTFLOW_TEST_DSN"))
	// Unset variables are left intact.
	assert.Equal(t, "dsn: ${TALENTFLOW_UNSET_VAR}", expandEnvVars("dsn: ${TALENTFLOW_UNSET_VAR}"))
}
