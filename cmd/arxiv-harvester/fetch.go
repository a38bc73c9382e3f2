package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/fetch"
	"github.com/pdiddy/arxiv-harvester/internal/history"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch arXiv metadata and write the JSON snapshot",
	Long: `Fetch queries the arXiv API once, normalizes the Atom response into paper
records, and atomically overwrites the snapshot file. A network failure,
malformed response, or write failure aborts the run with a non-zero exit
and leaves the previous snapshot untouched.

With --feeds, every feed in the YAML file is fetched in order; --feed
restricts the run to one named feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := harvesterConfig()
		applyFetchFlags(cmd, &cfg.Fetch)

		feeds, err := resolveFeeds(cmd, cfg.Fetch)
		if err != nil {
			return err
		}

		var rec fetch.Recorder
		noHistory, _ := cmd.Flags().GetBool("no-history")
		if !noHistory {
			store, err := history.NewStore(cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()
			rec = store
		}

		client := fetch.NewClient(newHTTPClient(cfg.Fetch), cfg.Fetch)
		result := fetch.RunAll(cmd.Context(), client, feeds, rec, time.Now, os.Stdout)
		if result.HasFailures() {
			return fmt.Errorf("%d of %d feeds failed", result.Failed, result.Failed+result.Succeeded)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("query", "", "arXiv search_query expression")
	fetchCmd.Flags().Int("max-results", 0, "number of entries to request")
	fetchCmd.Flags().String("sort-by", "", "sort field: lastUpdatedDate, submittedDate, relevance")
	fetchCmd.Flags().String("sort-order", "", "sort order: ascending, descending")
	fetchCmd.Flags().String("output", "", "snapshot output path")
	fetchCmd.Flags().Bool("envelope", false, "wrap the snapshot in the metadata object layout")
	fetchCmd.Flags().String("feeds", "", "YAML file defining multiple named feeds")
	fetchCmd.Flags().String("feed", "", "run only the named feed from the feeds file")
	fetchCmd.Flags().Bool("no-history", false, "skip recording the run in the history database")

	rootCmd.AddCommand(fetchCmd)
}

// applyFetchFlags overlays changed flags onto the viper-derived config.
func applyFetchFlags(cmd *cobra.Command, cfg *types.FetchConfig) {
	if cmd.Flags().Changed("query") {
		cfg.Query, _ = cmd.Flags().GetString("query")
	}
	if cmd.Flags().Changed("max-results") {
		cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	if cmd.Flags().Changed("sort-by") {
		cfg.SortBy, _ = cmd.Flags().GetString("sort-by")
	}
	if cmd.Flags().Changed("sort-order") {
		cfg.SortOrder, _ = cmd.Flags().GetString("sort-order")
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputPath, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("envelope") {
		cfg.Envelope, _ = cmd.Flags().GetBool("envelope")
	}
}

// resolveFeeds returns the feeds for this run: the feeds file when given,
// otherwise a single feed built from the fetch configuration.
func resolveFeeds(cmd *cobra.Command, cfg types.FetchConfig) ([]fetch.Feed, error) {
	feedsPath, _ := cmd.Flags().GetString("feeds")
	feedName, _ := cmd.Flags().GetString("feed")

	if feedsPath == "" {
		if feedName != "" {
			return nil, fmt.Errorf("--feed requires --feeds")
		}
		return []fetch.Feed{fetch.FeedFromConfig(cfg)}, nil
	}

	feeds, err := fetch.LoadFeeds(feedsPath)
	if err != nil {
		return nil, err
	}
	if feedName == "" {
		return feeds, nil
	}
	for _, f := range feeds {
		if f.Name == feedName {
			return []fetch.Feed{f}, nil
		}
	}
	return nil, fmt.Errorf("feed %q not found in %s", feedName, feedsPath)
}
