// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidFrameRate is returned when DEFAULT_FRAME_RATE is not positive.
	ErrInvalidFrameRate = errors.New("config: DEFAULT_FRAME_RATE must be positive")
	// ErrInvalidUploadLimit is returned when MAX_UPLOAD_MB is less than 1.
	ErrInvalidUploadLimit = errors.New("config: MAX_UPLOAD_MB must be at least 1")
	// ErrInvalidCaptureTimeout is returned when CAPTURE_TIMEOUT is not positive.
	ErrInvalidCaptureTimeout = errors.New("config: CAPTURE_TIMEOUT must be positive")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Storage settings
	DataDir     string `env:"DATA_DIR" json:"data_dir,omitempty"`
	DatabaseURL string `env:"DATABASE_URL" json:"-"` // Masked in JSON
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB, default=512" json:"max_upload_mb"`

	// Capture settings
	FFmpegPath       string        `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath      string        `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`
	CaptureTimeout   time.Duration `env:"CAPTURE_TIMEOUT, default=30s" json:"capture_timeout"`
	DefaultFrameRate float64       `env:"DEFAULT_FRAME_RATE, default=30" json:"default_frame_rate"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Tracing settings
	OTLPEndpoint string `env:"OTLP_ENDPOINT" json:"otlp_endpoint,omitempty"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// DatabaseEnabled returns true if a postgres connection string is provided.
func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

// TracingEnabled returns true if an OTLP collector endpoint is provided.
func (c *Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Load reads configuration from environment variables using go-envconfig.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are in their working ranges.
func (c *Config) Validate() error {
	if c.DefaultFrameRate <= 0 {
		return ErrInvalidFrameRate
	}
	if c.MaxUploadMB < 1 {
		return ErrInvalidUploadLimit
	}
	if c.CaptureTimeout <= 0 {
		return ErrInvalidCaptureTimeout
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs colorized human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, DataDir: %s, MaxUploadMB: %d, FFmpegPath: %s, FFprobePath: %s, CaptureTimeout: %s, DefaultFrameRate: %.3f, S3Bucket: %s, S3Region: %s, OTLPEndpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.DataDir,
		c.MaxUploadMB,
		c.FFmpegPath,
		c.FFprobePath,
		c.CaptureTimeout,
		c.DefaultFrameRate,
		c.S3Bucket,
		c.S3Region,
		c.OTLPEndpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
