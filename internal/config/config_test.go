package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("database.driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != 720*time.Hour {
		t.Errorf("auth.token_ttl = %v, want 720h", cfg.Auth.TokenTTL)
	}
	if cfg.Push.Interval != time.Minute {
		t.Errorf("push.interval = %v, want 1m", cfg.Push.Interval)
	}
	if cfg.PubSub.LocalBuffer != 256 {
		t.Errorf("pubsub.local_buffer = %d, want 256", cfg.PubSub.LocalBuffer)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moveready.yaml")
	yaml := `
server:
  addr: ":9000"
  allowed_origins: ["app.example.com"]
log:
  level: debug
  format: json
backup:
  retention_days: 7
  s3:
    bucket: exports
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOVEREADY_AUTH_JWT_SECRET", "from-env")
	t.Setenv("MOVEREADY_SERVER_ADDR", ":9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("server.addr = %q, want env override :9100", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("auth.jwt_secret = %q, want from-env", cfg.Auth.JWTSecret)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "app.example.com" {
		t.Errorf("allowed_origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "debug" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Backup.RetentionDays != 7 || cfg.Backup.S3.Bucket != "exports" {
		t.Errorf("backup = %+v", cfg.Backup)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(c *Config)
		ok   bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"postgres with dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "postgres://x" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mod(cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
