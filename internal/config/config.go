// Package config loads TwoOf settings from an optional YAML file and
// TWOOF_* environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks the environment variables read by Load.
const EnvPrefix = "TWOOF_"

const (
	BlobBackendFS = "fs"
	BlobBackendS3 = "s3"
)

type Config struct {
	Port      int    `koanf:"port"`
	DBPath    string `koanf:"db_path"`
	DataDir   string `koanf:"data_dir"`
	StaticDir string `koanf:"static_dir"`

	// AuthURL is the identity service base URL. When empty, bearer tokens
	// are verified locally with JWTSecret.
	AuthURL   string `koanf:"auth_url"`
	JWTSecret string `koanf:"jwt_secret"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	Timezone  string `koanf:"timezone"`

	BlobBackend string `koanf:"blob_backend"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3Region    string `koanf:"s3_region"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`
	S3Prefix    string `koanf:"s3_prefix"`

	JoinRateLimit   int           `koanf:"join_rate_limit"`
	JoinRateWindow  time.Duration `koanf:"join_rate_window"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	DBRetries       uint64        `koanf:"db_retries"`

	// AllowedOrigins are websocket origin patterns besides the request host.
	AllowedOrigins []string `koanf:"allowed_origins"`

	location *time.Location
}

// Load reads path (skipped when empty or missing), then the environment,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps TWOOF_S3_BUCKET to s3_bucket. Keys are flat.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = cfg.DataDir + "/twoof.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.BlobBackend == "" {
		cfg.BlobBackend = BlobBackendFS
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	if cfg.JoinRateLimit == 0 {
		cfg.JoinRateLimit = 10
	}
	if cfg.JoinRateWindow == 0 {
		cfg.JoinRateWindow = 15 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DBRetries == 0 {
		cfg.DBRetries = 5
	}
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.AuthURL == "" && len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("either auth_url or a jwt_secret of at least 16 characters is required"))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q must be text or json", c.LogFormat))
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	c.location = loc

	switch c.BlobBackend {
	case BlobBackendFS:
	case BlobBackendS3:
		if c.S3Bucket == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			errs = append(errs, errors.New("s3 blob backend needs s3_bucket, s3_access_key and s3_secret_key"))
		}
	default:
		errs = append(errs, fmt.Errorf("blob_backend %q must be fs or s3", c.BlobBackend))
	}

	if c.JoinRateLimit < 0 {
		errs = append(errs, errors.New("join_rate_limit must not be negative"))
	}
	if c.JoinRateWindow < 0 || c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}

	return errors.Join(errs...)
}

// Location is the zone "today" is computed in. Only valid after Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
