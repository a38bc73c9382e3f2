package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/fetch"
	"github.com/pdiddy/arxiv-harvester/internal/history"
	"github.com/pdiddy/arxiv-harvester/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the fetch job as a cron daemon",
	Long: `Schedule runs the harvester as a long-lived daemon: a cron expression
(default "0 6 * * *") fires the fetch job, failures are logged and counted
without stopping the daemon, and an optional Prometheus endpoint exposes
run metrics. SIGINT or SIGTERM shuts down gracefully, letting an in-flight
run finish within the run timeout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := harvesterConfig()
		applyFetchFlags(cmd, &cfg.Fetch)

		if cmd.Flags().Changed("cron") {
			cfg.Schedule.Cron, _ = cmd.Flags().GetString("cron")
		}
		if cmd.Flags().Changed("run-on-start") {
			cfg.Schedule.RunOnStart, _ = cmd.Flags().GetBool("run-on-start")
		}
		if cmd.Flags().Changed("run-timeout") {
			cfg.Schedule.RunTimeout, _ = cmd.Flags().GetDuration("run-timeout")
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.Schedule.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Schedule.LogFile, _ = cmd.Flags().GetString("log-file")
		}

		feeds, err := resolveFeeds(cmd, cfg.Fetch)
		if err != nil {
			return err
		}

		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := fetch.NewClient(newHTTPClient(cfg.Fetch), cfg.Fetch)
		logger := schedule.NewLogger(cfg.Schedule)
		return schedule.New(client, feeds, store, cfg.Schedule, logger).Run(ctx)
	},
}

func init() {
	scheduleCmd.Flags().String("cron", "", `cron expression (default "0 6 * * *")`)
	scheduleCmd.Flags().Bool("run-on-start", false, "run the fetch job immediately at startup")
	scheduleCmd.Flags().Duration("run-timeout", 0, "bound for a single scheduled run")
	scheduleCmd.Flags().String("metrics-addr", "", `Prometheus listen address (e.g. ":9464")`)
	scheduleCmd.Flags().String("log-file", "", "write logs to a rotating file instead of stderr")
	scheduleCmd.Flags().String("feeds", "", "YAML file defining multiple named feeds")
	scheduleCmd.Flags().String("feed", "", "run only the named feed from the feeds file")
	scheduleCmd.Flags().String("query", "", "arXiv search_query expression")
	scheduleCmd.Flags().Int("max-results", 0, "number of entries to request")
	scheduleCmd.Flags().String("sort-by", "", "sort field: lastUpdatedDate, submittedDate, relevance")
	scheduleCmd.Flags().String("sort-order", "", "sort order: ascending, descending")
	scheduleCmd.Flags().String("output", "", "snapshot output path")
	scheduleCmd.Flags().Bool("envelope", false, "wrap the snapshot in the metadata object layout")

	rootCmd.AddCommand(scheduleCmd)
}
