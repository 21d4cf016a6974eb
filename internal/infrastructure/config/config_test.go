package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfigFile writes a temp YAML config and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Database.Path != "./data/gridsense.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if cfg.Security.JWT.AccessTokenTTL != 30 {
		t.Errorf("AccessTokenTTL = %d, want 30", cfg.Security.JWT.AccessTokenTTL)
	}
	if cfg.Security.JWT.Secret == "" {
		t.Error("dev fallback secret should be applied outside production")
	}
	if cfg.InfluxDB.Enabled {
		t.Error("InfluxDB should be disabled by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
api:
  port: 9090
database:
  path: /tmp/test.db
security:
  jwt:
    access_token_ttl: 15
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want /tmp/test.db", cfg.Database.Path)
	}
	if cfg.Security.JWT.AccessTokenTTL != 15 {
		t.Errorf("AccessTokenTTL = %d, want 15", cfg.Security.JWT.AccessTokenTTL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  path: /tmp/from-file.db
`)

	t.Setenv("GRIDSENSE_DATABASE_PATH", "/tmp/from-env.db")
	t.Setenv("GRIDSENSE_JWT_SECRET", strings.Repeat("s", 32))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/from-env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Security.JWT.Secret != strings.Repeat("s", 32) {
		t.Error("JWT secret should come from environment")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() should fail for missing file")
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.Environment = "production"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should fail in production without a secret")
	}

	// Dev fallback secret must also be refused
	cfg.Security.JWT.Secret = devJWTSecret
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should refuse the dev fallback secret in production")
	}

	cfg.Security.JWT.Secret = strings.Repeat("x", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil with strong secret", err)
	}
}

func TestValidate_ProductionShortSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.Environment = "production"
	cfg.Security.JWT.Secret = "short"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject short secrets in production")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.API.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject port 0")
	}
}

func TestValidate_InfluxEnabledNeedsURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.InfluxDB.Enabled = true
	cfg.InfluxDB.URL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should require influxdb.url when enabled")
	}
}

func TestAccessTokenTTL(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.AccessTokenTTL().Minutes(); got != 30 {
		t.Errorf("AccessTokenTTL() = %v minutes, want 30", got)
	}
}

func TestAPITimeoutGetters(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.API.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.API.GetWriteTimeout().Seconds(); got != 30 {
		t.Errorf("GetWriteTimeout() = %v, want 30", got)
	}
	if got := cfg.API.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}
