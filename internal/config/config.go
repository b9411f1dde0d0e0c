package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const DefaultPath = "config/config.yaml"

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Driver       string `yaml:"driver"`
		URL          string `yaml:"url"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
		MaxOpenConns int    `yaml:"max_open_conns"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		LockTTL  time.Duration `yaml:"lock_ttl"`
	} `yaml:"redis"`
	Business struct {
		Timezone string `yaml:"timezone"`
		// TxIDSeed switches to the deterministic payment reference
		// generator when non-zero. Never set it in production.
		TxIDSeed uint64 `yaml:"txid_seed"`
	} `yaml:"business"`
	Archive struct {
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Prefix    string `yaml:"prefix"`
	} `yaml:"archive"`
}

// LoadConfig reads CONFIG_PATH (default config/config.yaml) and applies
// environment overrides. A missing default file is not an error.
func LoadConfig() (Config, error) {
	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		path = DefaultPath
	}
	cfg, err := Load(path)
	if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return Config{}, err
	}
	if err != nil {
		cfg = defaults()
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Load parses the YAML file at path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() Config {
	var cfg Config
	cfg.Server.Address = ":4001"
	cfg.Database.Driver = "mysql"
	cfg.Database.MaxIdleConns = 35
	cfg.Redis.LockTTL = 10 * time.Second
	cfg.Business.Timezone = "Asia/Kolkata"
	cfg.Archive.Region = "us-east-1"
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + strings.TrimPrefix(v, ":")
	}
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.Database.URL, "DATABASE_URL")
	set(&cfg.Database.Driver, "DATABASE_DRIVER")
	set(&cfg.Auth.JWTSecret, "JWT_SECRET")
	set(&cfg.Redis.Addr, "REDIS_ADDR")
	set(&cfg.Redis.Password, "REDIS_PASSWORD")
	set(&cfg.Business.Timezone, "BUSINESS_TIMEZONE")
	set(&cfg.Archive.Bucket, "AGREEMENT_S3_BUCKET")
	set(&cfg.Archive.Region, "AGREEMENT_S3_REGION")
	set(&cfg.Archive.Endpoint, "AGREEMENT_S3_ENDPOINT")
	set(&cfg.Archive.AccessKey, "AGREEMENT_S3_ACCESS_KEY")
	set(&cfg.Archive.SecretKey, "AGREEMENT_S3_SECRET_KEY")
	set(&cfg.Archive.Prefix, "AGREEMENT_S3_PREFIX")
}

// Validate checks required settings and normalizes the driver name.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "mysql":
		c.Database.Driver = "mysql"
	case "pgx", "postgres", "postgresql":
		c.Database.Driver = "pgx"
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("config: database url is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: jwt secret is required")
	}
	return nil
}
