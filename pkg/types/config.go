package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that call the arXiv API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with API requests
	// (e.g. "arxiv-harvester/0.1"). A contact email from .secrets/ is
	// appended when present, per arXiv API etiquette.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Query is the arXiv search_query expression used when no feeds file
	// is given (default: `(all:"large language model" OR all:"generative ai")`).
	Query string `json:"query" yaml:"query"`

	// MaxResults is the number of entries requested per feed (default 12).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SortBy orders results upstream: lastUpdatedDate, submittedDate, or
	// relevance (default lastUpdatedDate).
	SortBy string `json:"sort_by" yaml:"sort_by"`

	// SortOrder is ascending or descending (default descending).
	SortOrder string `json:"sort_order" yaml:"sort_order"`

	// OutputPath is where the snapshot file is written (default "data/arxiv.json").
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Envelope wraps the snapshot in the metadata object layout
	// ({generated_at_utc, query, ..., papers}) instead of a bare array.
	Envelope bool `json:"envelope" yaml:"envelope"`

	// RequestInterval is the minimum spacing between consecutive API calls
	// within one run (default 3s, the rate arXiv asks for).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`

	// MaxRetries bounds retry attempts on 429/503 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// HistoryConfig holds settings for the run history database.
type HistoryConfig struct {
	// DataDir is the directory containing harvester.db (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default number of runs listed by the history
	// command (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ScheduleConfig holds settings for the cron daemon.
type ScheduleConfig struct {
	// Cron is the schedule expression (default "0 6 * * *").
	Cron string `json:"cron" yaml:"cron"`

	// RunOnStart triggers an immediate fetch when the daemon starts.
	RunOnStart bool `json:"run_on_start" yaml:"run_on_start"`

	// RunTimeout bounds a single scheduled run (default 5m).
	RunTimeout time.Duration `json:"run_timeout" yaml:"run_timeout"`

	// MetricsAddr exposes Prometheus metrics when non-empty (e.g. ":9464").
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`

	// LogFile writes daemon logs to a rotating file instead of stderr.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// HarvesterConfig groups all stage configurations.
type HarvesterConfig struct {
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	History  HistoryConfig  `json:"history" yaml:"history"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
}
