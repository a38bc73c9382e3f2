package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent harvester runs",
	Long: `History lists recent runs from the local SQLite database: when each run
started, its status (ok, fetch_error, parse_error, io_error), how many
papers it fetched, and how many had never been seen before.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := harvesterConfig()

		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()

		feed, _ := cmd.Flags().GetString("feed")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := store.Runs(cmd.Context(), history.QueryOptions{Feed: feed, Limit: limit})
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return history.FormatJSON(runs, os.Stdout)
		}
		history.FormatTable(runs, os.Stdout)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("feed", "", "show runs for one feed only")
	historyCmd.Flags().Int("limit", 0, "maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}
