// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	HTTP     HTTPConfig            `mapstructure:"http"`
	Scraper  ScraperConfig         `mapstructure:"scraper"`
	Headless HeadlessConfig        `mapstructure:"headless"`
	Logging  LoggingConfig         `mapstructure:"logging"`
	Sites    map[string]SiteConfig `mapstructure:"sites"`
}

// HTTPConfig configures the retrying fetch client.
type HTTPConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxAttempts       int     `mapstructure:"max_attempts"`
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier_seconds"`
	BackoffMinSec     float64 `mapstructure:"backoff_min_seconds"`
	BackoffMaxSec     float64 `mapstructure:"backoff_max_seconds"`
	UserAgent         string  `mapstructure:"user_agent"`
	RotateUserAgent   bool    `mapstructure:"rotate_user_agent"`
	PerHostRPS        float64 `mapstructure:"per_host_rps"`
	PerHostBurst      int     `mapstructure:"per_host_burst"`
}

// ScraperConfig governs run controller behavior.
type ScraperConfig struct {
	Concurrency      int    `mapstructure:"concurrency"`
	GraceSeconds     int    `mapstructure:"grace_seconds"`
	OutputPath       string `mapstructure:"output_path"`
	MaxLinksPerPage  int    `mapstructure:"max_links_per_page"`
	DetailPageFetch  bool   `mapstructure:"detail_page_fetch"`
	RejectInvalidRow bool   `mapstructure:"reject_invalid_rows"`
}

// HeadlessConfig configures the chromedp rendering collaborator.
type HeadlessConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	MaxParallel     int     `mapstructure:"max_parallel"`
	NavTimeoutSec   int     `mapstructure:"nav_timeout_seconds"`
	SettleSeconds   float64 `mapstructure:"settle_seconds"`
	ChromeNoSandbox bool    `mapstructure:"chrome_no_sandbox"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// SiteConfig overrides per-site adapter settings, mainly to supply real
// endpoints for sources registered with placeholder domains.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Enabled *bool  `mapstructure:"enabled"`
}

// Timeout returns the fetch timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GracePeriod returns the cancellation grace period as a duration.
func (c ScraperConfig) GracePeriod() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}

// NavTimeout returns the headless navigation timeout as a duration.
func (c HeadlessConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// Settle returns the post-navigation settle delay as a duration.
func (c HeadlessConfig) Settle() time.Duration {
	return time.Duration(c.SettleSeconds * float64(time.Second))
}

// Load builds a Config from an optional file plus the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.backoff_multiplier_seconds", 1)
	v.SetDefault("http.backoff_min_seconds", 1)
	v.SetDefault("http.backoff_max_seconds", 8)
	v.SetDefault("http.rotate_user_agent", true)
	v.SetDefault("http.per_host_rps", 4)
	v.SetDefault("http.per_host_burst", 2)
	v.SetDefault("scraper.concurrency", 1)
	v.SetDefault("scraper.grace_seconds", 10)
	v.SetDefault("scraper.output_path", "data/courses.csv")
	v.SetDefault("scraper.max_links_per_page", 200)
	v.SetDefault("scraper.detail_page_fetch", true)
	v.SetDefault("scraper.reject_invalid_rows", true)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 60)
	v.SetDefault("headless.settle_seconds", 3)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.HTTP.BackoffMaxSec < c.HTTP.BackoffMinSec {
		return fmt.Errorf("http.backoff_max_seconds must be >= http.backoff_min_seconds")
	}
	if c.HTTP.PerHostRPS < 0 {
		return fmt.Errorf("http.per_host_rps must be >= 0")
	}
	if c.Scraper.Concurrency <= 0 {
		return fmt.Errorf("scraper.concurrency must be > 0")
	}
	if c.Scraper.OutputPath == "" {
		return fmt.Errorf("scraper.output_path must not be empty")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	return nil
}
