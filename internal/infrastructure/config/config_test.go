package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEW_RELIC_API_KEY", "NRAK-test")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 140*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "US", cfg.NerdGraph.Region)
	assert.Equal(t, 120*time.Second, cfg.NerdGraph.NRQLTimeout)
	assert.Equal(t, 90*time.Second, cfg.NerdGraph.CountTimeout)
	assert.Equal(t, 25, cfg.Engine.MaxConcurrency)
	assert.Equal(t, 100, cfg.Engine.FacetLimit)
	assert.Equal(t, 5*time.Minute, cfg.Engine.ShortIncidentThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Engine.LongIncidentThreshold)
	assert.Equal(t, time.Hour, cfg.Views.DefaultDuration)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.IsSlackEnabled())
}

func TestLoadFileWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_NR_KEY", "NRAK-from-file")
	path := writeConfig(t, `
server:
  port: 9090
nerdgraph:
  api_key: ${TEST_NR_KEY}
  region: EU
engine:
  max_concurrency: 10
  excluded_entity_types: [DASHBOARD]
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "NRAK-from-file", cfg.NerdGraph.APIKey)
	assert.Equal(t, "EU", cfg.NerdGraph.Region)
	assert.Equal(t, 10, cfg.Engine.MaxConcurrency)
	assert.Equal(t, []string{"DASHBOARD"}, cfg.Engine.ExcludedEntityTypes)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
nerdgraph:
  api_key: file-key
engine:
  max_concurrency: 10
`)
	t.Setenv("NEW_RELIC_API_KEY", "env-key")
	t.Setenv("MAX_CONCURRENCY", "7")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.NerdGraph.APIKey)
	assert.Equal(t, 7, cfg.Engine.MaxConcurrency)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("NEW_RELIC_API_KEY", "NRAK-test")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.NoError(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := Load(path)

	assert.ErrorContains(t, err, "parsing config file")
}

func validConfig() *Config {
	cfg := &Config{NerdGraph: NerdGraphConfig{APIKey: "key"}}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.NerdGraph.APIKey = "" }, wantErr: "nerdgraph.api_key"},
		{name: "bad region", mutate: func(c *Config) { c.NerdGraph.Region = "APAC" }, wantErr: "invalid region"},
		{name: "endpoint overrides region", mutate: func(c *Config) {
			c.NerdGraph.Region = "APAC"
			c.NerdGraph.Endpoint = "http://localhost:1234/graphql"
		}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "request timeout too long", mutate: func(c *Config) { c.Server.RequestTimeout = c.Server.WriteTimeout }, wantErr: "server.request_timeout must be less"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Engine.MaxConcurrency = 0 }, wantErr: "engine.max_concurrency"},
		{name: "fractional timeout", mutate: func(c *Config) { c.NerdGraph.NRQLTimeout = 1500 * time.Millisecond }, wantErr: "whole seconds"},
		{name: "thresholds inverted", mutate: func(c *Config) { c.Engine.ShortIncidentThreshold = 48 * time.Hour }, wantErr: "short_incident_threshold"},
		{name: "slack without token", mutate: func(c *Config) {
			c.Slack.Enabled = true
			c.Slack.ChannelID = "C1"
		}, wantErr: "slack.bot_token"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "invalid log level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid log format"},
		{name: "default above max", mutate: func(c *Config) { c.Views.DefaultDuration = c.Views.MaxDuration + time.Hour }, wantErr: "views.default_duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateReportsEveryFailure(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestIsReloadable(t *testing.T) {
	assert.True(t, IsReloadable("logging.level"))
	assert.True(t, IsReloadable("logging.format"))
	assert.False(t, IsReloadable("server.port"))
	assert.Equal(t, "HTTP listener restart required", getRestartReason("server"))
	assert.Equal(t, "unknown configuration requires restart", getRestartReason("other"))
}
