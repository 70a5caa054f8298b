// ABOUTME: YAML configuration loading with ${ENV} expansion and validation
// ABOUTME: Duration fields accept Go duration strings like "24h" or "30m"

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/totustuus/forum-api/internal/auth"
)

// Config is the root configuration for forumd.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
	Issuer    string `yaml:"issuer"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	TTL     string `yaml:"ttl"`
	Size    int    `yaml:"size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns a config with sensible defaults. The JWT secret has no
// default; it must come from the file or environment.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{HTTPAddr: ":8080"},
		Database: DatabaseConfig{Path: "forum.db"},
		Auth: AuthConfig{
			TokenTTL: "24h",
			Issuer:   "forum-api",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "30s",
			Size:    256,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads and validates the config file at path. Values like
// ${FORUM_JWT_SECRET} are expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and parseability of durations.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set it in the config file or via ${FORUM_JWT_SECRET})")
	}
	if len(c.Auth.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", auth.MinSecretLength)
	}
	if _, err := c.TokenTTL(); err != nil {
		return fmt.Errorf("auth.token_ttl: %w", err)
	}
	if c.Auth.Issuer == "" {
		return fmt.Errorf("auth.issuer is required")
	}
	if c.Cache.Enabled {
		if _, err := c.CacheTTL(); err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
		if c.Cache.Size <= 0 {
			return fmt.Errorf("cache.size must be positive")
		}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

// TokenTTL parses the configured token lifetime.
func (c *Config) TokenTTL() (time.Duration, error) {
	return time.ParseDuration(c.Auth.TokenTTL)
}

// CacheTTL parses the configured cache entry lifetime.
func (c *Config) CacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}
