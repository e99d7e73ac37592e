package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	NerdGraph NerdGraphConfig `yaml:"nerdgraph"`
	Engine    EngineConfig    `yaml:"engine"`
	Slack     SlackConfig     `yaml:"slack"`
	Logging   LoggingConfig   `yaml:"logging"`
	Views     ViewsConfig     `yaml:"views"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// NerdGraphConfig holds the query API settings.
type NerdGraphConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"` // "US" or "EU", used when endpoint is empty

	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	NRQLTimeout  time.Duration `yaml:"nrql_timeout"`
	CountTimeout time.Duration `yaml:"count_timeout"`

	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig configures fail-fast behaviour towards the query API.
type CircuitBreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// EngineConfig holds aggregation and fan-out settings.
type EngineConfig struct {
	MaxConcurrency      int      `yaml:"max_concurrency"`
	FacetLimit          int      `yaml:"facet_limit"`
	ExcludedEntityTypes []string `yaml:"excluded_entity_types"`

	ShortIncidentThreshold time.Duration `yaml:"short_incident_threshold"`
	LongIncidentThreshold  time.Duration `yaml:"long_incident_threshold"`

	Recommendations RecommendationsConfig `yaml:"recommendations"`
}

// RecommendationsConfig overrides the CCU recommendation texts.
type RecommendationsConfig struct {
	TopLevelWhere string `yaml:"top_level_where"`
	SlidingWindow string `yaml:"sliding_window"`
}

// SlackConfig holds Slack digest settings.
type SlackConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
	APIURL    string `yaml:"api_url"` // Optional, for tests against a fake API
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ViewsConfig holds request-level view settings.
type ViewsConfig struct {
	DefaultDuration time.Duration `yaml:"default_duration"`
	MaxDuration     time.Duration `yaml:"max_duration"`

	// StaleTTL is how long a view's latest time range is remembered for superseded-response detection.
	StaleTTL time.Duration `yaml:"stale_ttl"`
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Load from file if exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			// Expand environment variables in YAML
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// overrideFromEnv overrides config values from environment variables.
func (c *Config) overrideFromEnv() {
	// Server
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	// NerdGraph
	if v := os.Getenv("NEW_RELIC_API_KEY"); v != "" {
		c.NerdGraph.APIKey = v
	}
	if v := os.Getenv("NERDGRAPH_ENDPOINT"); v != "" {
		c.NerdGraph.Endpoint = v
	}
	if v := os.Getenv("NEW_RELIC_REGION"); v != "" {
		c.NerdGraph.Region = v
	}

	// Engine
	if v := os.Getenv("MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.MaxConcurrency = n
		}
	}

	// Slack
	if v := os.Getenv("SLACK_ENABLED"); v != "" {
		c.Slack.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_CHANNEL_ID"); v != "" {
		c.Slack.ChannelID = v
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// applyDefaults sets default values for unset config options.
func (c *Config) applyDefaults() {
	// Server defaults. Requests wait on NRQL queries of up to two minutes.
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 150 * time.Second
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 140 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	// NerdGraph defaults
	if c.NerdGraph.Region == "" {
		c.NerdGraph.Region = "US"
	}
	if c.NerdGraph.HTTPTimeout == 0 {
		c.NerdGraph.HTTPTimeout = 130 * time.Second
	}
	if c.NerdGraph.NRQLTimeout == 0 {
		c.NerdGraph.NRQLTimeout = 120 * time.Second
	}
	if c.NerdGraph.CountTimeout == 0 {
		c.NerdGraph.CountTimeout = 90 * time.Second
	}
	if c.NerdGraph.CircuitBreaker.MaxFailures == 0 {
		c.NerdGraph.CircuitBreaker.MaxFailures = 5
	}
	if c.NerdGraph.CircuitBreaker.ResetTimeout == 0 {
		c.NerdGraph.CircuitBreaker.ResetTimeout = 30 * time.Second
	}

	// Engine defaults
	if c.Engine.MaxConcurrency == 0 {
		c.Engine.MaxConcurrency = 25
	}
	if c.Engine.FacetLimit == 0 {
		c.Engine.FacetLimit = 100
	}
	if c.Engine.ShortIncidentThreshold == 0 {
		c.Engine.ShortIncidentThreshold = 5 * time.Minute
	}
	if c.Engine.LongIncidentThreshold == 0 {
		c.Engine.LongIncidentThreshold = 24 * time.Hour
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// View defaults
	if c.Views.DefaultDuration == 0 {
		c.Views.DefaultDuration = time.Hour
	}
	if c.Views.MaxDuration == 0 {
		c.Views.MaxDuration = 90 * 24 * time.Hour
	}
	if c.Views.StaleTTL == 0 {
		c.Views.StaleTTL = 15 * time.Minute
	}
}

// IsSlackEnabled returns true if the Slack digest is enabled.
func (c *Config) IsSlackEnabled() bool {
	return c.Slack.Enabled
}
