package config

import (
	"fmt"
	"time"

	redisclient "github.com/vndesk/helpdesk/internal/infra/redis"
	"github.com/vndesk/helpdesk/internal/infra/sheets"
	"github.com/vndesk/helpdesk/internal/infra/storage/postgres"
	"github.com/vndesk/helpdesk/internal/retry"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Timezone  string             `yaml:"timezone"`
	Auth      AuthConfig         `yaml:"auth"`
	Retry     RetryConfig        `yaml:"retry"`
	Database  postgres.Config    `yaml:"database"`
	Sheets    sheets.Config      `yaml:"sheets"`
	Redis     redisclient.Config `yaml:"redis"`
	Logging   LoggingConfig      `yaml:"logging"`
	RateLimit RateLimitConfig    `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// AuthConfig holds the email allowlist. Empty means open access.
type AuthConfig struct {
	AllowedEmails []string `yaml:"allowed_emails"`
}

// RetryConfig holds the remote-call retry policy settings. Delays are
// duration strings ("500ms", "8s"); yaml.v2 cannot decode those into
// time.Duration directly.
type RetryConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelay   string `yaml:"base_delay"`
	MaxDelay    string `yaml:"max_delay"`
	JitterMax   string `yaml:"jitter_max"`
}

// Policy converts the config section into a retry policy, filling unset
// values from the defaults.
func (c RetryConfig) Policy() (retry.Policy, error) {
	p := retry.DefaultPolicy
	if c.MaxAttempts > 0 {
		p.MaxAttempts = c.MaxAttempts
	}
	var err error
	if p.BaseDelay, err = parseDuration(c.BaseDelay, p.BaseDelay); err != nil {
		return p, fmt.Errorf("base_delay: %w", err)
	}
	if p.MaxDelay, err = parseDuration(c.MaxDelay, p.MaxDelay); err != nil {
		return p, fmt.Errorf("max_delay: %w", err)
	}
	if p.JitterMax, err = parseDuration(c.JitterMax, p.JitterMax); err != nil {
		return p, fmt.Errorf("jitter_max: %w", err)
	}
	return p, p.Validate()
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// RateLimitConfig holds per-identity request limits.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}
