// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

// Config captures all service knobs loaded via Viper.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Browser BrowserConfig `mapstructure:"browser"`
	Overlay OverlayConfig `mapstructure:"overlay"`
	Output  OutputConfig  `mapstructure:"output"`
	Store   StoreConfig   `mapstructure:"store"`
	Status  StatusConfig  `mapstructure:"status"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlConfig governs the worker pool and crawl budgets.
type CrawlConfig struct {
	Workers              int     `mapstructure:"workers"`
	MaxPagesPerSite      int     `mapstructure:"max_pages_per_site"`
	DiscoveryMaxDepth    int     `mapstructure:"discovery_max_depth"`
	PageTimeoutSeconds   int     `mapstructure:"page_timeout_seconds"`
	SiteTimeoutSeconds   int     `mapstructure:"site_timeout_seconds"`
	GlobalTimeoutSeconds int     `mapstructure:"global_timeout_seconds"`
	PagesPerSecond       float64 `mapstructure:"pages_per_second"`
	UserAgent            string  `mapstructure:"user_agent"`
}

// PageTimeout returns the per-page budget.
func (c CrawlConfig) PageTimeout() time.Duration {
	return time.Duration(c.PageTimeoutSeconds) * time.Second
}

// SiteTimeout returns the per-site budget.
func (c CrawlConfig) SiteTimeout() time.Duration {
	return time.Duration(c.SiteTimeoutSeconds) * time.Second
}

// GlobalTimeout returns the whole-run budget; zero disables it.
func (c CrawlConfig) GlobalTimeout() time.Duration {
	return time.Duration(c.GlobalTimeoutSeconds) * time.Second
}

// BrowserConfig configures the headless Chrome instances.
type BrowserConfig struct {
	Headless        bool `mapstructure:"headless"`
	WindowWidth     int  `mapstructure:"window_width"`
	WindowHeight    int  `mapstructure:"window_height"`
	StabilizeWaitMs int  `mapstructure:"stabilize_wait_ms"`
}

// StabilizeWait returns the post-load settle window.
func (c BrowserConfig) StabilizeWait() time.Duration {
	return time.Duration(c.StabilizeWaitMs) * time.Millisecond
}

// OverlayConfig tunes overlay discovery.
type OverlayConfig struct {
	StackRankThreshold int `mapstructure:"stack_rank_threshold"`
}

// OutputConfig sets where artifacts land.
type OutputConfig struct {
	Dir          string `mapstructure:"dir"`
	MaxHTMLBytes int64  `mapstructure:"max_html_bytes"`
}

// StoreConfig controls the SQLite page store.
type StoreConfig struct {
	Path            string `mapstructure:"path"`
	SkipRecentHours int    `mapstructure:"skip_recent_hours"`
}

// StatusConfig controls the operational HTTP endpoint.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features and optional file output.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

// Load builds a Config from defaults, an optional file, and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGESNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, crawler.ConfigError(fmt.Errorf("read config: %w", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, crawler.ConfigError(fmt.Errorf("unmarshal config: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.workers", 4)
	v.SetDefault("crawl.max_pages_per_site", 5)
	v.SetDefault("crawl.discovery_max_depth", 2)
	v.SetDefault("crawl.page_timeout_seconds", 60)
	v.SetDefault("crawl.site_timeout_seconds", 300)
	v.SetDefault("crawl.global_timeout_seconds", 0)
	v.SetDefault("crawl.pages_per_second", 1.0)
	v.SetDefault("crawl.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1440)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.stabilize_wait_ms", 2000)
	v.SetDefault("overlay.stack_rank_threshold", 5)
	v.SetDefault("output.dir", "captures")
	v.SetDefault("output.max_html_bytes", 10*1024*1024)
	v.SetDefault("store.path", "pagesnap.db")
	v.SetDefault("store.skip_recent_hours", 0)
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":9090")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 14)
}

// Validate rejects configurations the crawl cannot run under. Violations are
// fatal at startup, never mid-run.
func (c Config) Validate() error {
	var errs []error
	if c.Crawl.Workers < 1 {
		errs = append(errs, errors.New("crawl.workers must be at least 1"))
	}
	if c.Crawl.MaxPagesPerSite < 1 {
		errs = append(errs, errors.New("crawl.max_pages_per_site must be at least 1"))
	}
	if c.Crawl.PageTimeoutSeconds < 1 {
		errs = append(errs, errors.New("crawl.page_timeout_seconds must be at least 1"))
	}
	if c.Crawl.SiteTimeoutSeconds < c.Crawl.PageTimeoutSeconds {
		errs = append(errs, errors.New("crawl.site_timeout_seconds must not be below the page timeout"))
	}
	if c.Crawl.PagesPerSecond < 0 {
		errs = append(errs, errors.New("crawl.pages_per_second must not be negative"))
	}
	if c.Overlay.StackRankThreshold < 0 {
		errs = append(errs, errors.New("overlay.stack_rank_threshold must not be negative"))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is required"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.Status.Enabled && c.Status.Addr == "" {
		errs = append(errs, errors.New("status.addr is required when status.enabled"))
	}
	if len(errs) > 0 {
		return crawler.ConfigError(errors.Join(errs...))
	}
	return nil
}
