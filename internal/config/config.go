// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Config contains process configuration for the moatwatch pipeline.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for metrics/status/report.
	Addr string `koanf:"addr"`

	// DataDir receives snapshot and summary files. Created if absent.
	DataDir string `koanf:"data_dir"`

	// OutputDir receives the generated report. Wiped at the start of each run.
	OutputDir string `koanf:"output_dir"`

	// Schedule is a cron expression for scheduled runs (server local time).
	// The default fires on weekday evenings after the exchanges close.
	Schedule string `koanf:"schedule"`

	// RunOnce executes a single run immediately and exits instead of
	// scheduling. A manual run follows the exact same path as a scheduled one.
	RunOnce bool `koanf:"run_once"`

	// CollectTimeout bounds the wall-clock duration of the collection step.
	// Exceeding it fails the run.
	CollectTimeout time.Duration `koanf:"collect_timeout"`

	// FetchWorkers sets the number of concurrent fundamentals fetchers.
	FetchWorkers int `koanf:"fetch_workers"`

	// QueueSize bounds the in-memory fetch job queue.
	QueueSize int `koanf:"queue_size"`

	// BatchSize and BatchPause pace collection to respect upstream rate
	// limits: after each BatchSize symbols the collector pauses for BatchPause.
	BatchSize  int           `koanf:"batch_size"`
	BatchPause time.Duration `koanf:"batch_pause"`

	// Universe source endpoints.
	NSEListURL  string `koanf:"nse_list_url"`
	BSEListURL  string `koanf:"bse_list_url"`
	ScreenerURL string `koanf:"screener_url"`

	// QuoteBaseURL is the base URL of the fundamentals API.
	QuoteBaseURL string `koanf:"quote_base_url"`

	// UserAgent is sent on all outbound requests; some exchange endpoints
	// reject the Go default.
	UserAgent string `koanf:"user_agent"`

	// RequestTimeout bounds each outbound HTTP request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MinScore is the minimum Buffett score for a stock to become a pick.
	MinScore float64 `koanf:"min_score"`

	// ReportTitle heads the generated HTML report.
	ReportTitle string `koanf:"report_title"`

	// Publish settings. Publishing is disabled by default so local runs
	// never push anywhere.
	PublishEnabled bool   `koanf:"publish_enabled"`
	RepoDir        string `koanf:"repo_dir"`
	RemoteName     string `koanf:"remote_name"`
	SiteBranch     string `koanf:"site_branch"`
	DataBranch     string `koanf:"data_branch"`
	GitAuthorName  string `koanf:"git_author_name"`
	GitAuthorEmail string `koanf:"git_author_email"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		DataDir:        "data",
		OutputDir:      "output",
		Schedule:       "30 11 * * 1-5",
		CollectTimeout: 2 * time.Hour,
		FetchWorkers:   8,
		QueueSize:      10_000,
		BatchSize:      100,
		BatchPause:     90 * time.Second,
		NSEListURL:     "https://archives.nseindia.com/content/equities/EQUITY_L.csv",
		BSEListURL:     "https://api.bseindia.com/BseIndiaAPI/api/ListofScripData/w?Group=&Scripcode=&industry=&segment=Equity&status=Active",
		QuoteBaseURL:   "https://query1.finance.yahoo.com",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		RequestTimeout: 20 * time.Second,
		MinScore:       8,
		ReportTitle:    "Warren Buffett Indian Stock Picks",
		PublishEnabled: false,
		RepoDir:        ".",
		RemoteName:     "origin",
		SiteBranch:     "gh-pages",
		DataBranch:     "main",
		GitAuthorName:  "moatwatch-bot",
		GitAuthorEmail: "bot@moatwatch.local",
	}
}
