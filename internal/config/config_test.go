package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "DATABASE_DRIVER", "JWT_SECRET", "REDIS_ADDR", "REDIS_PASSWORD",
		"BUSINESS_TIMEZONE", "AGREEMENT_S3_BUCKET", "AGREEMENT_S3_REGION", "AGREEMENT_S3_ENDPOINT",
		"AGREEMENT_S3_ACCESS_KEY", "AGREEMENT_S3_SECRET_KEY", "AGREEMENT_S3_PREFIX"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  address: ":8080"
database:
  driver: postgres
  url: postgres://rentflow@localhost/rentflow
auth:
  jwt_secret: s3cret
redis:
  addr: localhost:6379
  lock_ttl: 5s
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" || cfg.Database.Driver != "pgx" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Redis.LockTTL != 5*time.Second {
		t.Fatalf("unexpected lock ttl %s", cfg.Redis.LockTTL)
	}
	if cfg.Business.Timezone != "Asia/Kolkata" || cfg.Database.MaxIdleConns != 35 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeFile(t, "database:\n  url: file-dsn\nauth:\n  jwt_secret: file\n"))
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "env-dsn")
	t.Setenv("AGREEMENT_S3_BUCKET", "docs")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9000" || cfg.Database.URL != "env-dsn" || cfg.Archive.Bucket != "docs" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Auth.JWTSecret != "file" {
		t.Fatalf("unexpected secret %q", cfg.Auth.JWTSecret)
	}
}

func TestMissingExplicitFileFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without database url")
	}
	cfg.Database.URL = "dsn"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without jwt secret")
	}
	cfg.Auth.JWTSecret = "x"
	cfg.Database.Driver = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
