// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads application configuration. Defaults are overlaid
// by an optional YAML file named in FOLIO_CONFIG and then by FOLIO_*
// environment variables (FOLIO_DB_HOST sets db_host, and so on).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable the application reads.
const EnvPrefix = "FOLIO_"

// defaultDBPassword is refused in production.
const defaultDBPassword = "changeme"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string `koanf:"host"`
	Port string `koanf:"port"`
	Env  string `koanf:"env"` // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `koanf:"valkey_host"`
	ValkeyPort     string `koanf:"valkey_port"`
	ValkeyPassword string `koanf:"valkey_password"`

	// Site owner. OwnerEmail selects whose portfolio visitors see; with
	// OwnerPassword set the account is created on first start.
	OwnerEmail    string `koanf:"owner_email"`
	OwnerPassword string `koanf:"owner_password"`

	// Shared-secret unlock; empty disables it.
	GateSecret string `koanf:"gate_secret"`

	// Accounts
	TOTPIssuer     string `koanf:"totp_issuer"`
	SecureCookies  bool   `koanf:"secure_cookies"`
	LoginRateLimit int    `koanf:"login_rate_limit"` // attempts per IP per minute

	// S3-compatible object storage; uploads are embedded when unset.
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3Region    string `koanf:"s3_region"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3PublicURL string `koanf:"s3_public_url"`

	// Images wider than this are downscaled on upload.
	MediaMaxWidth int `koanf:"media_max_width"`

	// Comma-separated origins allowed to call the JSON API cross-origin.
	CORSOrigins string `koanf:"cors_origins"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Host: "0.0.0.0",
		Port: "8080",
		Env:  "development",

		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "folio",
		DBPassword: defaultDBPassword,
		DBName:     "folio",

		ValkeyHost: "localhost",
		ValkeyPort: "6379",

		TOTPIssuer:     "Folio",
		LoginRateLimit: 10,

		S3Region: "fsn1",
		S3Bucket: "folio-media",

		MediaMaxWidth: 1920,
	}
}

// Load reads the configuration. Returns an error if the YAML file named
// by FOLIO_CONFIG cannot be read, or if production runs with the default
// database password.
func Load() (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// Empty variables count as unset so they never blank out a default.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Env == "production" && cfg.DBPassword == defaultDBPassword {
		return nil, fmt.Errorf("%sDB_PASSWORD must be set in production", EnvPrefix)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Origins splits CORSOrigins into a list, dropping blanks.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
