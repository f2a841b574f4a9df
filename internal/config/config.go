// Package config loads the server configuration from an optional YAML file
// and MOVEREADY_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/backup"
	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/push"
)

// EnvPrefix prefixes every environment override, e.g. MOVEREADY_SERVER_ADDR.
const EnvPrefix = "MOVEREADY"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  database.Config `mapstructure:"database"`
	PubSub    pubsub.Config   `mapstructure:"pubsub"`
	Auth      auth.Config     `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Push      push.Config     `mapstructure:"push"`
	Backup    backup.Config   `mapstructure:"backup"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	BaseURL string `mapstructure:"base_url"`
	// AllowedOrigins lists the WebSocket origins that are permitted.
	// An empty slice allows all origins (useful for local development only).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

// RateLimitConfig bounds requests per client IP on the auth endpoints.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// keys lists every setting so environment variables are picked up by
// Unmarshal even when the file does not mention them.
var keys = []string{
	"server.addr", "server.base_url", "server.allowed_origins",
	"log.level", "log.format",
	"database.driver", "database.path", "database.dsn",
	"pubsub.redis_addr", "pubsub.redis_password", "pubsub.redis_db", "pubsub.local_buffer",
	"auth.jwt_secret", "auth.token_ttl", "auth.oauth_proxy_secret",
	"ratelimit.rps", "ratelimit.burst",
	"push.vapid_public_key", "push.vapid_private_key", "push.subject", "push.interval",
	"backup.passphrase", "backup.interval", "backup.retention_days",
	"backup.s3.endpoint", "backup.s3.bucket", "backup.s3.region", "backup.s3.access_key", "backup.s3.secret_key",
}

// Load reads config from the YAML file at path, if any, and applies
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	// Defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "moveready.db")
	v.SetDefault("pubsub.local_buffer", 256)
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("ratelimit.rps", 1)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("push.interval", "1m")
	v.SetDefault("backup.interval", "24h")
	v.SetDefault("backup.retention_days", 30)
	v.SetDefault("backup.s3.region", "auto")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case string(database.SQLite):
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case string(database.Postgres):
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not sqlite or postgres", c.Database.Driver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("ratelimit.rps and ratelimit.burst must be positive"))
	}
	return errors.Join(errs...)
}
