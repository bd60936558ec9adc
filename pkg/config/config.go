// Package config provides configuration structures and loading logic
// for callwarden.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/callwarden/callwarden/pkg/domain"
)

// Config holds the global configuration for the screening daemon.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Screening ScreeningConfig `yaml:"screening"`
}

// ServerConfig holds configuration for the admin HTTP server.
type ServerConfig struct {
	AdminAddress string `yaml:"admin_address"`
}

// TelemetryConfig holds configuration for OpenTelemetry.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ScreeningConfig holds the call-screening configuration as written in
// YAML. ToDomain converts it to the immutable snapshot form.
type ScreeningConfig struct {
	TimeoutMS int `yaml:"timeout_ms"`
	// CheckCompletedFiltersOnTimeout selects the deadline fallback that
	// folds only completed filters. Defaults to true when omitted.
	CheckCompletedFiltersOnTimeout *bool           `yaml:"check_completed_filters_on_timeout"`
	Blocklist                      []string        `yaml:"blocklist"`
	Contacts                       []ContactConfig `yaml:"contacts"`
	Policy                         PolicyConfig    `yaml:"policy"`
	ScreeningService               bool            `yaml:"screening_service"`
}

// ContactConfig is one address-book entry.
type ContactConfig struct {
	Number          string `yaml:"number"`
	Name            string `yaml:"name"`
	Starred         bool   `yaml:"starred"`
	SendToVoicemail bool   `yaml:"send_to_voicemail"`
}

// PolicyConfig holds the Rego screening policy.
type PolicyConfig struct {
	Entrypoint string            `yaml:"entrypoint"`
	Modules    map[string]string `yaml:"modules"`
}

// Load reads configuration from a file and applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		// Defaults
		Server: ServerConfig{
			AdminAddress: ":19090",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	if path != "" {
		//nolint:gosec // Config file path is controlled by admin/operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CALLWARDEN_ADMIN_ADDR"); val != "" {
		cfg.Server.AdminAddress = val
	}

	if val := os.Getenv("CALLWARDEN_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("CALLWARDEN_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}

	if val := os.Getenv("CALLWARDEN_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}

	if val := os.Getenv("CALLWARDEN_SCREENING_TIMEOUT_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			cfg.Screening.TimeoutMS = ms
		}
	}
}

// Validate performs validation of the entire configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}

	if err := c.Screening.Validate(); err != nil {
		return fmt.Errorf("screening configuration: %w", err)
	}

	return nil
}

// Validate performs validation of logging configuration.
func (c *LoggingConfig) Validate() error {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = "info"
	}

	level := strings.TrimSpace(strings.ToLower(c.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Level = level
		return nil
	default:
		return fmt.Errorf("%w: invalid log level %q, supported levels: debug, info, warn, error",
			domain.ErrConfigInvalid, c.Level)
	}
}

// Validate performs validation of screening configuration.
func (c *ScreeningConfig) Validate() error {
	if c.TimeoutMS < 0 {
		return fmt.Errorf("%w: timeout_ms must not be negative", domain.ErrConfigInvalid)
	}

	for i, contact := range c.Contacts {
		if strings.TrimSpace(contact.Number) == "" {
			return fmt.Errorf("%w: contact %d has no number", domain.ErrConfigInvalid, i)
		}
	}

	if len(c.Policy.Modules) > 0 && strings.TrimSpace(c.Policy.Entrypoint) == "" {
		c.Policy.Entrypoint = "screening/decision"
	}

	return nil
}

// ToDomain converts the YAML form into an immutable screening snapshot
// config.
func (c *ScreeningConfig) ToDomain() domain.ScreeningConfig {
	checkCompleted := true
	if c.CheckCompletedFiltersOnTimeout != nil {
		checkCompleted = *c.CheckCompletedFiltersOnTimeout
	}

	contacts := make([]domain.Contact, 0, len(c.Contacts))
	for _, contact := range c.Contacts {
		contacts = append(contacts, domain.Contact{
			Number:          contact.Number,
			Name:            contact.Name,
			Starred:         contact.Starred,
			SendToVoicemail: contact.SendToVoicemail,
		})
	}

	return domain.ScreeningConfig{
		TimeoutMS:                      c.TimeoutMS,
		CheckCompletedFiltersOnTimeout: checkCompleted,
		Blocklist:                      append([]string(nil), c.Blocklist...),
		Contacts:                       contacts,
		PolicyModules:                  c.Policy.Modules,
		PolicyEntrypoint:               c.Policy.Entrypoint,
		ScreeningServiceEnabled:        c.ScreeningService,
	}
}
