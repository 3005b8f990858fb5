// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Classifier ClassifierConfig
	Upload     UploadConfig
	Session    SessionConfig
	Display    DisplayConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Mock       MockConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0, none)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests. It must cover
	// a full classify plus evaluate round trip (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// ClassifierConfig holds settings for the remote classification service.
type ClassifierConfig struct {
	// BaseURL is the service root. NEXT_PUBLIC_API_BASE is accepted for
	// compatibility with existing deployments.
	BaseURL string `env:"API_BASE" envAlt:"NEXT_PUBLIC_API_BASE" default:"http://localhost:8000"`

	// Timeout bounds each request to the service (default: 60s)
	Timeout time.Duration `env:"CLASSIFIER_TIMEOUT" default:"60s"`

	// EvaluatePath is the metrics endpoint (default: /classify/order)
	EvaluatePath string `env:"CLASSIFIER_EVALUATE_PATH" default:"/classify/order"`

	// MaxConcurrent is the number of classifications sent at once (default: 4)
	MaxConcurrent int `env:"CLASSIFY_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a classification waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"CLASSIFY_MAX_WAIT" default:"10s"`
}

// UploadConfig holds CSV upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL" default:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`
	CookieName    string        `env:"SESSION_COOKIE_NAME" default:"csvclassify_session"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" default:"false"`
}

// DisplayConfig controls how results are rendered and exported.
type DisplayConfig struct {
	// Timezone is an IANA zone name or "Local" (default: Local)
	Timezone string `env:"DISPLAY_TIMEZONE" default:"Local"`

	// ExportQuoting is compat or rfc4180 (default: compat)
	ExportQuoting string `env:"EXPORT_QUOTING" default:"compat"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MockConfig configures the mock classification service binary.
type MockConfig struct {
	Port        int    `env:"MOCK_PORT" default:"8000"`
	LabelColumn string `env:"MOCK_LABEL_COLUMN" default:"label"`
	Seed        uint64 `env:"MOCK_SEED" default:"0"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Location resolves Timezone. Validate guarantees it loads.
func (c *DisplayConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Addr returns the mock service listen address.
func (c *MockConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
