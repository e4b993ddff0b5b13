package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/layer-3/sentinel/core"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"` // base64
	JWTIssuer       string        `mapstructure:"JWT_ISSUER"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	StoreBackend    string        `mapstructure:"STORE_BACKEND"`
	DatabaseDSN     string        `mapstructure:"DATABASE_DSN"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	CleanupInterval time.Duration `mapstructure:"BLACKLIST_CLEANUP_INTERVAL"`
}

var defaults = map[string]any{
	"HTTP_ADDR":                  ":9000",
	"JWT_ISSUER":                 "sentinel",
	"ACCESS_TOKEN_TTL":           "15m",
	"REFRESH_TOKEN_TTL":          "168h",
	"STORE_BACKEND":              BackendPostgres,
	"BLACKLIST_CLEANUP_INTERVAL": "1h",
}

// LoadFromEnv reads the configuration from the environment, with an
// optional .env file in the working directory for local development.
func LoadFromEnv() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range []string{"JWT_SECRET", "DATABASE_DSN", "REDIS_URL"} {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Secret decodes JWT_SECRET
func (c *Config) Secret() ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(c.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET must be base64: %w", err)
	}
	return secret, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	secret, err := c.Secret()
	if err != nil {
		return err
	}
	if len(secret) < core.MinSecretLength {
		return fmt.Errorf("JWT_SECRET must decode to at least %d bytes", core.MinSecretLength)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.CleanupInterval <= 0 {
		return errors.New("BLACKLIST_CLEANUP_INTERVAL must be positive")
	}

	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  HTTPAddr: %s\n", c.HTTPAddr))
	sb.WriteString(fmt.Sprintf("  JWTIssuer: %s\n", c.JWTIssuer))
	sb.WriteString(fmt.Sprintf("  AccessTokenTTL: %s\n", c.AccessTokenTTL))
	sb.WriteString(fmt.Sprintf("  RefreshTokenTTL: %s\n", c.RefreshTokenTTL))
	sb.WriteString(fmt.Sprintf("  StoreBackend: %s\n", c.StoreBackend))
	sb.WriteString(fmt.Sprintf("  CleanupInterval: %s\n", c.CleanupInterval))
	sb.WriteString(fmt.Sprintf("  JWTSecret: %s\n", mask(c.JWTSecret)))
	sb.WriteString(fmt.Sprintf("  DatabaseDSN: %s\n", mask(c.DatabaseDSN)))
	sb.WriteString(fmt.Sprintf("  RedisURL: %s\n", mask(c.RedisURL)))
	return sb.String()
}

func mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "********"
}
