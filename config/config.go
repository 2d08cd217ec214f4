package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/linkpreview/fetcher"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Batch     BatchConfig     `yaml:"batch"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// FetchConfig controls how previewed pages are retrieved.
type FetchConfig struct {
	// Timeout bounds the whole fetch, redirects and body read included.
	Timeout time.Duration `yaml:"timeout"` // default: 10s

	// UserAgent is sent with every request. Many sites only serve OG tags
	// to user agents they recognise.
	UserAgent string `yaml:"user_agent"`

	// MaxBodyBytes caps how much of the response body is read.
	MaxBodyBytes int64 `yaml:"max_body_bytes"` // default: 10 MB

	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects int `yaml:"max_redirects"` // default: 10

	// TLSFingerprint switches the transport to a Chrome TLS ClientHello.
	TLSFingerprint bool `yaml:"tls_fingerprint"` // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool `yaml:"enabled"` // default: true

	// APIKeys is the list of valid API keys. Empty means open access.
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 5

	// Burst is the maximum burst size per identity.
	Burst int `yaml:"burst"` // default: 10
}

// BatchConfig controls POST /api/v1/preview/batch.
type BatchConfig struct {
	// MaxURLs is the largest batch accepted.
	MaxURLs int `yaml:"max_urls"` // default: 20

	// Concurrency is the number of previews fetched in parallel.
	Concurrency int `yaml:"concurrency"` // default: 5

	// WebhookSecret signs batch.completed notifications. Empty disables signing.
	WebhookSecret string `yaml:"webhook_secret"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Fetch: FetchConfig{
			Timeout:      fetcher.DefaultTimeout,
			UserAgent:    fetcher.DefaultUserAgent,
			MaxBodyBytes: fetcher.DefaultMaxBodyBytes,
			MaxRedirects: fetcher.DefaultMaxRedirects,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5.0,
			Burst:             10,
		},
		Batch: BatchConfig{
			MaxURLs:     20,
			Concurrency: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration in three layers: defaults, then the YAML
// file named by LINKPREVIEW_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("LINKPREVIEW_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// loadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envOr("LINKPREVIEW_HOST", c.Server.Host)
	c.Server.Port = envIntOr("LINKPREVIEW_PORT", c.Server.Port)
	c.Server.Mode = envOr("LINKPREVIEW_MODE", c.Server.Mode)

	c.Fetch.Timeout = envDurationOr("LINKPREVIEW_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.UserAgent = envOr("LINKPREVIEW_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.MaxBodyBytes = int64(envIntOr("LINKPREVIEW_MAX_BODY_BYTES", int(c.Fetch.MaxBodyBytes)))
	c.Fetch.MaxRedirects = envIntOr("LINKPREVIEW_MAX_REDIRECTS", c.Fetch.MaxRedirects)
	c.Fetch.TLSFingerprint = envBoolOr("LINKPREVIEW_TLS_FINGERPRINT", c.Fetch.TLSFingerprint)

	c.Auth.Enabled = envBoolOr("LINKPREVIEW_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.APIKeys = envSliceOr("LINKPREVIEW_API_KEYS", c.Auth.APIKeys)

	c.RateLimit.RequestsPerSecond = envFloatOr("LINKPREVIEW_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("LINKPREVIEW_RATE_BURST", c.RateLimit.Burst)

	c.Batch.MaxURLs = envIntOr("LINKPREVIEW_BATCH_MAX_URLS", c.Batch.MaxURLs)
	c.Batch.Concurrency = envIntOr("LINKPREVIEW_BATCH_CONCURRENCY", c.Batch.Concurrency)
	c.Batch.WebhookSecret = envOr("LINKPREVIEW_WEBHOOK_SECRET", c.Batch.WebhookSecret)

	c.Log.Level = envOr("LINKPREVIEW_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("LINKPREVIEW_LOG_FORMAT", c.Log.Format)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
