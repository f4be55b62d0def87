// Package config loads verificator settings from the environment, with an
// optional .env file for stored credentials.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Angki/bandcamp-codes-verificator/pkg/batch"
	"github.com/Angki/bandcamp-codes-verificator/pkg/pacing"
	"github.com/Angki/bandcamp-codes-verificator/pkg/verify"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of a verification run.
type Config struct {
	// VerifyURL is the remote verification endpoint.
	VerifyURL string

	// Timeout bounds each verification call.
	Timeout time.Duration

	// MinDelay and MaxDelay are the inclusive pacing bounds.
	MinDelay time.Duration
	MaxDelay time.Duration

	// MaxCodes caps the batch size.
	MaxCodes int

	// UserAgent sent with every request.
	UserAgent string

	// LogLevel and LogPretty configure the global logger.
	LogLevel  string
	LogPretty bool

	// Stored credentials (optional; flags and prompts take precedence).
	Crumb    string
	ClientID string
	Session  string
	Identity string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		VerifyURL: verify.DefaultVerifyURL,
		Timeout:   verify.DefaultTimeout,
		MinDelay:  pacing.DefaultMinDelay,
		MaxDelay:  pacing.DefaultMaxDelay,
		MaxCodes:  batch.DefaultMaxCodes,
		UserAgent: verify.DefaultUserAgent,
		LogLevel:  "info",
	}
}

// Load reads the defaults, overlays a .env file when present, then the
// process environment.
func Load() (Config, error) {
	// The .env file is optional; stored credentials usually live there.
	_ = godotenv.Load()

	cfg := Default()

	cfg.VerifyURL = getEnv("BCVERIFY_URL", cfg.VerifyURL)
	cfg.UserAgent = getEnv("BCVERIFY_USER_AGENT", cfg.UserAgent)
	cfg.LogLevel = getEnv("BCVERIFY_LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = getEnvBool("BCVERIFY_LOG_PRETTY", cfg.LogPretty)
	cfg.MaxCodes = getEnvInt("BCVERIFY_MAX_CODES", cfg.MaxCodes)
	cfg.Timeout = getEnvSeconds("BCVERIFY_TIMEOUT_SEC", cfg.Timeout)
	cfg.MinDelay = getEnvSeconds("BCVERIFY_MIN_DELAY_SEC", cfg.MinDelay)
	cfg.MaxDelay = getEnvSeconds("BCVERIFY_MAX_DELAY_SEC", cfg.MaxDelay)

	cfg.Crumb = getEnv("BANDCAMP_CRUMB", cfg.Crumb)
	cfg.ClientID = getEnv("BANDCAMP_CLIENT_ID", cfg.ClientID)
	cfg.Session = getEnv("BANDCAMP_SESSION", cfg.Session)
	cfg.Identity = getEnv("BANDCAMP_IDENTITY", cfg.Identity)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.VerifyURL == "" {
		return fmt.Errorf("verify URL must not be empty")
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1s (got %s)", c.Timeout)
	}
	if c.MinDelay > c.MaxDelay {
		return fmt.Errorf("min delay %s must not exceed max delay %s", c.MinDelay, c.MaxDelay)
	}
	if c.MaxCodes < 1 {
		return fmt.Errorf("max codes must be at least 1 (got %d)", c.MaxCodes)
	}
	return nil
}

// HasCredentials reports whether all required stored credentials are set.
func (c Config) HasCredentials() bool {
	return c.Crumb != "" && c.ClientID != "" && c.Session != ""
}

// HasCookies reports whether the cookie material needed for crumb
// auto-extraction is set.
func (c Config) HasCookies() bool {
	return c.ClientID != "" && c.Session != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
