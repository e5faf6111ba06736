package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Backend  BackendConfig  `toml:"backend"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Database DatabaseConfig `toml:"database"`
	Polling  PollingConfig  `toml:"polling"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port            string `toml:"port"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
}

// BackendConfig points at the upstream inventory REST API
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AuthConfig selects how bearer tokens are verified. JWKSURL wins over Secret when both are set.
type AuthConfig struct {
	Secret  string `toml:"secret"`
	JWKSURL string `toml:"jwks_url"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MinioConfig contains document archive settings
type MinioConfig struct {
	Endpoint       string `toml:"endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	Bucket         string `toml:"bucket"`
	URLExpiryHours int    `toml:"url_expiry_hours"`
}

// DatabaseConfig contains the command journal database settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// PollingConfig contains scheduler intervals
type PollingConfig struct {
	UnreadIntervalSeconds     int `toml:"unread_interval_seconds"`
	SessionIdleMinutes        int `toml:"session_idle_minutes"`
	StockSweepIntervalMinutes int `toml:"stock_sweep_interval_minutes"`
	StockAlertTTLHours        int `toml:"stock_alert_ttl_hours"`
}

// Default returns the configuration used when no file or environment overrides are present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownSeconds: 10,
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000/api/",
			TimeoutSeconds: 15,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Minio: MinioConfig{
			Endpoint:       "localhost:9000",
			AccessKey:      "minioadmin",
			SecretKey:      "minioadmin",
			Bucket:         "stock-documents",
			URLExpiryHours: 24,
		},
		Polling: PollingConfig{
			UnreadIntervalSeconds:     30,
			SessionIdleMinutes:        30,
			StockSweepIntervalMinutes: 15,
			StockAlertTTLHours:        6,
		},
	}
}

// Load reads the optional TOML file on top of the defaults, then applies environment overrides
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if _, err := toml.DecodeFile(filename, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Backend.BaseURL, "BACKEND_BASE_URL")
	setString(&c.Auth.Secret, "JWT_SECRET")
	setString(&c.Auth.JWKSURL, "JWKS_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	setString(&c.Database.URL, "DATABASE_URL")

	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		c.Minio.UseSSL = v == "true"
	}
	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.Backend.TimeoutSeconds, "BACKEND_TIMEOUT_SECONDS"); err != nil {
		return err
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", v, err)
		}
		c.Polling.UnreadIntervalSeconds = int(d / time.Second)
	}
	return nil
}

// Validate checks the settings every deployment needs
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url is required")
	}
	if c.Auth.Secret == "" && c.Auth.JWKSURL == "" {
		return errors.New("either auth secret or jwks_url is required")
	}
	if c.Polling.UnreadIntervalSeconds <= 0 {
		return errors.New("polling unread_interval_seconds must be positive")
	}
	return nil
}

// UnreadInterval is the notification poll period
func (c *Config) UnreadInterval() time.Duration {
	return time.Duration(c.Polling.UnreadIntervalSeconds) * time.Second
}

// SessionIdle is how long a session may go untouched before it is unmounted
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Polling.SessionIdleMinutes) * time.Minute
}

// StockSweepInterval is the low-stock sweep period
func (c *Config) StockSweepInterval() time.Duration {
	return time.Duration(c.Polling.StockSweepIntervalMinutes) * time.Minute
}

// StockAlertTTL is how long a raised low-stock alert suppresses duplicates
func (c *Config) StockAlertTTL() time.Duration {
	return time.Duration(c.Polling.StockAlertTTLHours) * time.Hour
}

// BackendTimeout is the per-request timeout for the upstream API
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// DocumentURLExpiry is the lifetime of presigned document links
func (c *Config) DocumentURLExpiry() time.Duration {
	return time.Duration(c.Minio.URLExpiryHours) * time.Hour
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
