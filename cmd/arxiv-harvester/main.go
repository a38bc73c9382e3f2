// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-harvester CLI.
// The harvester queries the arXiv API on a schedule or on demand,
// normalizes the Atom response, and publishes a JSON snapshot for the
// static site to consume.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-harvester/internal/fetch"
	"github.com/pdiddy/arxiv-harvester/internal/secrets"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the arxiv-harvester CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-harvester",
	Short: "Scheduled arXiv metadata snapshots for static publishing",
	Long: `arxiv-harvester fetches paper metadata from the arXiv API and writes a
normalized JSON snapshot to a fixed path, overwriting the previous snapshot
atomically. It runs once per invocation (fetch) or as a cron daemon
(schedule). Every run is recorded in a local SQLite history database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if s.ContactEmail != "" {
			fmt.Fprintln(os.Stderr, "Loaded contact email from .secrets/")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arxiv-harvester.yaml or ~/.config/arxiv-harvester/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("arxiv-harvester")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arxiv-harvester"))
		}
	}

	viper.SetEnvPrefix("ARXIV_HARVESTER")
	viper.AutomaticEnv()

	viper.SetDefault("fetch.query", fetch.DefaultQuery)
	viper.SetDefault("fetch.max_results", fetch.DefaultMaxResults)
	viper.SetDefault("fetch.sort_by", fetch.DefaultSortBy)
	viper.SetDefault("fetch.sort_order", fetch.DefaultSortOrder)
	viper.SetDefault("fetch.output_path", fetch.DefaultOutputPath)
	viper.SetDefault("fetch.timeout", 30*time.Second)
	viper.SetDefault("fetch.user_agent", "arxiv-harvester/"+version)
	viper.SetDefault("fetch.request_interval", 3*time.Second)
	viper.SetDefault("history.data_dir", "data")
	viper.SetDefault("history.max_results", 20)
	viper.SetDefault("schedule.cron", "0 6 * * *")
	viper.SetDefault("schedule.run_timeout", 5*time.Minute)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// harvesterConfig assembles the stage configurations from viper.
func harvesterConfig() types.HarvesterConfig {
	return types.HarvesterConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: loadedSecrets.UserAgent(viper.GetString("fetch.user_agent")),
			},
			Query:           viper.GetString("fetch.query"),
			MaxResults:      viper.GetInt("fetch.max_results"),
			SortBy:          viper.GetString("fetch.sort_by"),
			SortOrder:       viper.GetString("fetch.sort_order"),
			OutputPath:      viper.GetString("fetch.output_path"),
			Envelope:        viper.GetBool("fetch.envelope"),
			RequestInterval: viper.GetDuration("fetch.request_interval"),
			MaxRetries:      viper.GetInt("fetch.max_retries"),
		},
		History: types.HistoryConfig{
			DataDir:    viper.GetString("history.data_dir"),
			MaxResults: viper.GetInt("history.max_results"),
		},
		Schedule: types.ScheduleConfig{
			Cron:        viper.GetString("schedule.cron"),
			RunOnStart:  viper.GetBool("schedule.run_on_start"),
			RunTimeout:  viper.GetDuration("schedule.run_timeout"),
			MetricsAddr: viper.GetString("schedule.metrics_addr"),
			LogFile:     viper.GetString("schedule.log_file"),
		},
	}
}

// newHTTPClient builds the HTTP client shared by fetch and schedule.
func newHTTPClient(cfg types.FetchConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
