// Package config loads application configuration from a TOML file with
// environment variable overrides (ESTOQUE_ prefix).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	SQLite    SQLiteConfig    `koanf:"sqlite"`
	Redis     RedisConfig     `koanf:"redis"`
	Alerts    AlertsConfig    `koanf:"alerts"`
	Directory DirectoryConfig `koanf:"directory"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	ListenAddr string `koanf:"listen_addr"`
}

// LoggingConfig controls backend log output.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// SQLiteConfig holds rule persistence settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// RedisConfig holds the in-app notification cache settings. When Addr is
// empty the in-app channel falls back to a logging sink.
type RedisConfig struct {
	Addr            string        `koanf:"addr"`
	Password        string        `koanf:"password"`
	DB              int           `koanf:"db"`
	NotificationTTL time.Duration `koanf:"notification_ttl"`
}

// SMTPConfig holds email delivery settings.
type SMTPConfig struct {
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	Username      string `koanf:"username"`
	Password      string `koanf:"password"`
	From          string `koanf:"from"`
	ReplyTo       string `koanf:"reply_to"`
	Security      string `koanf:"security"`
	SkipTLSVerify bool   `koanf:"tls_insecure_skip_verify"`
}

// AlertsConfig controls the evaluation loop and outbound channels.
type AlertsConfig struct {
	Enabled            bool          `koanf:"enabled"`
	EvaluationInterval time.Duration `koanf:"evaluation_interval"`
	RequestTimeout     time.Duration `koanf:"request_timeout"`
	Source             string        `koanf:"source"`
	WebhookURLs        []string      `koanf:"webhook_urls"`
	SMTP               SMTPConfig    `koanf:"smtp"`
	SeedRules          []SeedRule    `koanf:"seed_rules"`
}

// SeedRule describes a rule loaded into an empty rule database on first boot.
type SeedRule struct {
	ID              string   `koanf:"id"`
	Name            string   `koanf:"name"`
	Description     string   `koanf:"description"`
	Metric          string   `koanf:"metric"`
	Condition       string   `koanf:"condition"`
	Threshold       float64  `koanf:"threshold"`
	Severity        string   `koanf:"severity"`
	Enabled         bool     `koanf:"enabled"`
	CooldownMinutes int      `koanf:"cooldown_minutes"`
	Channels        []string `koanf:"channels"`
	Recipients      []string `koanf:"recipients"`
}

// Rule converts the seed definition into a model rule.
func (s SeedRule) Rule() models.AlertRule {
	channels := make([]models.AlertChannelType, 0, len(s.Channels))
	for _, ch := range s.Channels {
		channels = append(channels, models.AlertChannelType(ch))
	}
	return models.AlertRule{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Metric:          s.Metric,
		Condition:       models.RuleCondition(s.Condition),
		Threshold:       s.Threshold,
		Severity:        models.AlertSeverity(s.Severity),
		Enabled:         s.Enabled,
		CooldownMinutes: s.CooldownMinutes,
		Channels:        channels,
		Recipients:      s.Recipients,
	}
}

// DirectoryConfig maps company ids to the user ids that receive in-app
// notifications. The surrounding product resolves this from its user
// service; the static mapping is the default standalone implementation.
type DirectoryConfig struct {
	Companies map[string][]string `koanf:"companies"`
}

// Default returns the baseline configuration before file and env overrides.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{ListenAddr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
		SQLite:  SQLiteConfig{Path: "estoque-alerts.db"},
		Redis:   RedisConfig{NotificationTTL: 7 * 24 * time.Hour},
		Alerts: AlertsConfig{
			Enabled:            true,
			EvaluationInterval: time.Minute,
			RequestTimeout:     5 * time.Second,
			Source:             "estoque-mestre",
			SMTP:               SMTPConfig{Port: 587, Security: "starttls"},
		},
	}
}

// Load reads configuration from the given path (optional) and the
// environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not accessible: %w", err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// ESTOQUE_ALERTS__EVALUATION_INTERVAL -> alerts.evaluation_interval.
	// Double underscore separates nesting levels so keys with underscores
	// survive.
	if err := k.Load(env.Provider("ESTOQUE_", ".", func(s string) string {
		key := strings.TrimPrefix(s, "ESTOQUE_")
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
