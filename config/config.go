package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Monitor MonitorConfig
	Browser BrowserConfig
	Scrape  ScrapeConfig
	Notify  NotifyConfig
	Server  ServerConfig
	Log     LogConfig
}

// MonitorConfig describes the search filter and run bounds.
type MonitorConfig struct {
	// AgencyName is the contracting agency filter.
	AgencyName string // default: "DEPT OF THE NAVY"

	// NAICSCode is the NAICS industry code filter.
	NAICSCode string // default: "531311"

	// PSCCode is the product/service code filter.
	PSCCode string // default: "R799"

	// DaysBack is the lookback window for the date-signed range.
	DaysBack int // default: 30

	// MaxPages caps how many result pages a run traverses,
	// including the first page.
	MaxPages int // default: 3

	// StateFile is the path of the persisted seen-id ledger.
	StateFile string // default: "fpds_seen.json"

	// Schedule is an optional cron expression. Empty means run once
	// and exit.
	Schedule string

	// SkipProbe disables the pre-flight HTTP reachability check.
	SkipProbe bool // default: false
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all browser traffic.
	Proxy string
}

// ScrapeConfig controls the search session behavior.
type ScrapeConfig struct {
	// NavTimeout is the max time for initial navigation plus DOM load.
	NavTimeout time.Duration // default: 30s

	// ResultsWait bounds the wait for the results table to appear
	// after submitting the search.
	ResultsWait time.Duration // default: 45s

	// SettleDelay is the fixed pause after submit before polling for
	// results. FPDS renders the grid well after the form posts back.
	SettleDelay time.Duration // default: 4500ms

	// ResultsScope is an optional CSS selector narrowing the table
	// hunt to one page region. Empty means scan the whole document.
	ResultsScope string
}

// NotifyConfig controls outbound notification delivery.
type NotifyConfig struct {
	// WebhookURL is the Discord-compatible webhook endpoint. Empty
	// degrades delivery to local log output.
	WebhookURL string

	// RequestsPerMinute is the sustained webhook post rate.
	RequestsPerMinute float64 // default: 25

	// Burst is the maximum webhook post burst.
	Burst int // default: 5
}

// ServerConfig controls the status HTTP server (scheduled mode only).
type ServerConfig struct {
	Addr string // default: ":8080"
	Mode string // "debug", "release", "test"; default: "release"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane
// defaults. A .env file in the working directory is loaded first when
// present (no error if absent).
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Monitor: MonitorConfig{
			AgencyName: envOr("MONITOR_AGENCY", "DEPT OF THE NAVY"),
			NAICSCode:  envOr("MONITOR_NAICS", "531311"),
			PSCCode:    envOr("MONITOR_PSC", "R799"),
			DaysBack:   envIntOr("MONITOR_DAYS_BACK", 30),
			MaxPages:   envIntOr("MONITOR_MAX_PAGES", 3),
			StateFile:  envOr("MONITOR_STATE_FILE", "fpds_seen.json"),
			Schedule:   os.Getenv("MONITOR_SCHEDULE"),
			SkipProbe:  envBoolOr("MONITOR_SKIP_PROBE", false),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("MONITOR_HEADLESS", true),
			NoSandbox:  envBoolOr("MONITOR_NO_SANDBOX", false),
			BrowserBin: os.Getenv("MONITOR_BROWSER_BIN"),
			Proxy:      os.Getenv("MONITOR_PROXY"),
		},
		Scrape: ScrapeConfig{
			NavTimeout:   envDurationOr("MONITOR_NAV_TIMEOUT", 30*time.Second),
			ResultsWait:  envDurationOr("MONITOR_RESULTS_WAIT", 45*time.Second),
			SettleDelay:  envDurationOr("MONITOR_SETTLE_DELAY", 4500*time.Millisecond),
			ResultsScope: os.Getenv("MONITOR_RESULTS_SCOPE"),
		},
		Notify: NotifyConfig{
			WebhookURL:        os.Getenv("DISCORD_WEBHOOK"),
			RequestsPerMinute: envFloatOr("MONITOR_NOTIFY_RPM", 25.0),
			Burst:             envIntOr("MONITOR_NOTIFY_BURST", 5),
		},
		Server: ServerConfig{
			Addr: envOr("MONITOR_STATUS_ADDR", ":8080"),
			Mode: envOr("MONITOR_STATUS_MODE", "release"),
		},
		Log: LogConfig{
			Level:  envOr("MONITOR_LOG_LEVEL", "info"),
			Format: envOr("MONITOR_LOG_FORMAT", "json"),
		},
	}
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
