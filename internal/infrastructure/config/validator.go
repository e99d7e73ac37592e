package config

import (
	"fmt"
	"strings"
	"time"
)

// reloadableKeys defines the whitelist of configuration keys that can be hot-reloaded.
var reloadableKeys = map[string]bool{
	"logging.level":  true,
	"logging.format": true,
}

// staticKeys defines configuration keys that require application restart.
var staticKeys = map[string]string{
	"server":    "HTTP listener restart required",
	"nerdgraph": "query client recreation required",
	"engine":    "aggregation engine and runner recreation required",
	"slack":     "Slack client recreation required",
	"views":     "view registry recreation required",
}

// IsReloadable returns true if the given config key can be hot-reloaded.
func IsReloadable(key string) bool {
	return reloadableKeys[key]
}

// getRestartReason returns the reason why a static config key requires restart.
func getRestartReason(key string) string {
	if reason, ok := staticKeys[key]; ok {
		return reason
	}
	return "unknown configuration requires restart"
}

// ValidateLogLevel checks if the log level is valid.
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
	return nil
}

// ValidateLogFormat checks if the log format is valid.
func ValidateLogFormat(format string) error {
	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[strings.ToLower(format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", format)
	}
	return nil
}

// ValidateNonEmpty checks if a string is non-empty.
func ValidateNonEmpty(value string, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateDuration checks if a duration is greater than zero.
func ValidateDuration(duration time.Duration, fieldName string) error {
	if duration <= 0 {
		return fmt.Errorf("%s must be greater than 0", fieldName)
	}
	return nil
}

// ValidatePort checks if a port number is valid.
func ValidatePort(port int, fieldName string) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", fieldName, port)
	}
	return nil
}

// ValidateRegion checks if the region is one the query API serves.
func ValidateRegion(region string) error {
	switch strings.ToUpper(region) {
	case "US", "EU":
		return nil
	default:
		return fmt.Errorf("invalid region: %s (must be US or EU)", region)
	}
}

// Validate performs comprehensive validation on the configuration.
// Returns an error listing every failed check.
func (c *Config) Validate() error {
	var errors []string
	check := func(err error) {
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	// Server validation
	check(ValidatePort(c.Server.Port, "server.port"))
	check(ValidateDuration(c.Server.ReadTimeout, "server.read_timeout"))
	check(ValidateDuration(c.Server.WriteTimeout, "server.write_timeout"))
	check(ValidateDuration(c.Server.RequestTimeout, "server.request_timeout"))
	check(ValidateDuration(c.Server.ShutdownTimeout, "server.shutdown_timeout"))

	// Logical constraint: RequestTimeout should be less than WriteTimeout
	if c.Server.RequestTimeout >= c.Server.WriteTimeout {
		errors = append(errors, "server.request_timeout must be less than server.write_timeout")
	}

	// NerdGraph validation
	check(ValidateNonEmpty(c.NerdGraph.APIKey, "nerdgraph.api_key"))
	if c.NerdGraph.Endpoint == "" {
		check(ValidateRegion(c.NerdGraph.Region))
	}
	check(ValidateDuration(c.NerdGraph.HTTPTimeout, "nerdgraph.http_timeout"))
	check(ValidateDuration(c.NerdGraph.NRQLTimeout, "nerdgraph.nrql_timeout"))
	check(ValidateDuration(c.NerdGraph.CountTimeout, "nerdgraph.count_timeout"))
	check(ValidateDuration(c.NerdGraph.CircuitBreaker.ResetTimeout, "nerdgraph.circuit_breaker.reset_timeout"))
	if c.NerdGraph.CircuitBreaker.MaxFailures < 1 {
		errors = append(errors, "nerdgraph.circuit_breaker.max_failures must be at least 1")
	}
	if c.NerdGraph.NRQLTimeout%time.Second != 0 || c.NerdGraph.CountTimeout%time.Second != 0 {
		errors = append(errors, "nerdgraph query timeouts must be whole seconds")
	}

	// Engine validation
	if c.Engine.MaxConcurrency < 1 {
		errors = append(errors, "engine.max_concurrency must be at least 1")
	}
	if c.Engine.FacetLimit < 1 {
		errors = append(errors, "engine.facet_limit must be at least 1")
	}
	check(ValidateDuration(c.Engine.ShortIncidentThreshold, "engine.short_incident_threshold"))
	check(ValidateDuration(c.Engine.LongIncidentThreshold, "engine.long_incident_threshold"))
	if c.Engine.ShortIncidentThreshold >= c.Engine.LongIncidentThreshold {
		errors = append(errors, "engine.short_incident_threshold must be less than engine.long_incident_threshold")
	}

	// Slack validation
	if c.IsSlackEnabled() {
		check(ValidateNonEmpty(c.Slack.BotToken, "slack.bot_token"))
		check(ValidateNonEmpty(c.Slack.ChannelID, "slack.channel_id"))
	}

	// Logging validation
	check(ValidateLogLevel(c.Logging.Level))
	check(ValidateLogFormat(c.Logging.Format))

	// View validation
	check(ValidateDuration(c.Views.DefaultDuration, "views.default_duration"))
	check(ValidateDuration(c.Views.StaleTTL, "views.stale_ttl"))
	if c.Views.DefaultDuration > c.Views.MaxDuration {
		errors = append(errors, "views.default_duration cannot exceed views.max_duration")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
