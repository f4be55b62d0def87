package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.VerifyURL == "" {
		t.Error("default VerifyURL is empty")
	}
	if cfg.Timeout != 25*time.Second {
		t.Errorf("default Timeout = %s, want 25s", cfg.Timeout)
	}
	if cfg.MinDelay != 1*time.Second || cfg.MaxDelay != 5*time.Second {
		t.Errorf("default delay bounds = [%s, %s], want [1s, 5s]", cfg.MinDelay, cfg.MaxDelay)
	}
	if cfg.MaxCodes != 2000 {
		t.Errorf("default MaxCodes = %d, want 2000", cfg.MaxCodes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BCVERIFY_URL", "https://example.com/verify")
	t.Setenv("BCVERIFY_MAX_CODES", "50")
	t.Setenv("BCVERIFY_TIMEOUT_SEC", "10")
	t.Setenv("BCVERIFY_MIN_DELAY_SEC", "2")
	t.Setenv("BCVERIFY_MAX_DELAY_SEC", "4")
	t.Setenv("BCVERIFY_LOG_PRETTY", "true")
	t.Setenv("BANDCAMP_CRUMB", "crumb-env")
	t.Setenv("BANDCAMP_CLIENT_ID", "cid-env")
	t.Setenv("BANDCAMP_SESSION", "sess-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.VerifyURL != "https://example.com/verify" {
		t.Errorf("VerifyURL = %q", cfg.VerifyURL)
	}
	if cfg.MaxCodes != 50 {
		t.Errorf("MaxCodes = %d, want 50", cfg.MaxCodes)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout)
	}
	if cfg.MinDelay != 2*time.Second || cfg.MaxDelay != 4*time.Second {
		t.Errorf("delay bounds = [%s, %s], want [2s, 4s]", cfg.MinDelay, cfg.MaxDelay)
	}
	if !cfg.LogPretty {
		t.Error("LogPretty = false, want true")
	}
	if !cfg.HasCredentials() {
		t.Error("HasCredentials() = false with all credentials set")
	}
}

func TestLoad_InvalidDelayRange(t *testing.T) {
	t.Setenv("BCVERIFY_MIN_DELAY_SEC", "10")
	t.Setenv("BCVERIFY_MAX_DELAY_SEC", "2")

	if _, err := Load(); err == nil {
		t.Error("Load() with min > max expected error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty url", func(c *Config) { c.VerifyURL = "" }, true},
		{"sub-second timeout", func(c *Config) { c.Timeout = 500 * time.Millisecond }, true},
		{"zero max codes", func(c *Config) { c.MaxCodes = 0 }, true},
		{"inverted delays", func(c *Config) { c.MinDelay = 6 * time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasCookies(t *testing.T) {
	cfg := Default()
	if cfg.HasCookies() {
		t.Error("HasCookies() = true without cookies")
	}

	cfg.ClientID = "cid"
	cfg.Session = "sess"
	if !cfg.HasCookies() {
		t.Error("HasCookies() = false with cookies set")
	}
	if cfg.HasCredentials() {
		t.Error("HasCredentials() = true without crumb")
	}
}
