// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Defaults for a feed when the config and feeds file leave fields unset.
// These match the original daily job.
const (
	DefaultQuery      = `(all:"large language model" OR all:"generative ai")`
	DefaultMaxResults = 12
	DefaultSortBy     = "lastUpdatedDate"
	DefaultSortOrder  = "descending"
	DefaultOutputPath = "data/arxiv.json"
)

// Feed is one named query with its own output artifact. A feeds file lists
// several; a plain `fetch` run uses a single feed built from FetchConfig.
type Feed struct {
	// Name identifies the feed in history records and log lines.
	Name string `yaml:"name"`

	// Query is the arXiv search_query expression.
	Query string `yaml:"query"`

	// MaxResults is the number of entries requested.
	MaxResults int `yaml:"max_results"`

	// SortBy is lastUpdatedDate, submittedDate, or relevance.
	SortBy string `yaml:"sort_by"`

	// SortOrder is ascending or descending.
	SortOrder string `yaml:"sort_order"`

	// OutputPath is the snapshot destination for this feed.
	OutputPath string `yaml:"output"`

	// Envelope selects the metadata-object snapshot layout.
	Envelope bool `yaml:"envelope"`
}

// feedsFile is the on-disk representation.
type feedsFile struct {
	Feeds []Feed `yaml:"feeds"`
}

var validSortBy = map[string]bool{
	"lastUpdatedDate": true,
	"submittedDate":   true,
	"relevance":       true,
}

var validSortOrder = map[string]bool{
	"ascending":  true,
	"descending": true,
}

// FeedFromConfig builds the single default feed from the fetch configuration.
func FeedFromConfig(cfg types.FetchConfig) Feed {
	f := Feed{
		Name:       "default",
		Query:      cfg.Query,
		MaxResults: cfg.MaxResults,
		SortBy:     cfg.SortBy,
		SortOrder:  cfg.SortOrder,
		OutputPath: cfg.OutputPath,
		Envelope:   cfg.Envelope,
	}
	f.applyDefaults()
	return f
}

// LoadFeeds reads and validates a feeds file. Every feed must carry a
// unique name and a valid sort selection; unset fields take defaults.
func LoadFeeds(path string) ([]Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feeds file: %w", err)
	}

	var ff feedsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing feeds file %s: %w", path, err)
	}
	if len(ff.Feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s defines no feeds", path)
	}

	seen := make(map[string]bool)
	for i := range ff.Feeds {
		f := &ff.Feeds[i]
		if f.Name == "" {
			return nil, fmt.Errorf("feeds file %s: feed %d has no name", path, i+1)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("feeds file %s: duplicate feed name %q", path, f.Name)
		}
		seen[f.Name] = true

		f.applyDefaults()
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("feed %q: %w", f.Name, err)
		}
	}
	return ff.Feeds, nil
}

func (f *Feed) applyDefaults() {
	if f.Query == "" {
		f.Query = DefaultQuery
	}
	if f.MaxResults <= 0 {
		f.MaxResults = DefaultMaxResults
	}
	if f.SortBy == "" {
		f.SortBy = DefaultSortBy
	}
	if f.SortOrder == "" {
		f.SortOrder = DefaultSortOrder
	}
	if f.OutputPath == "" {
		f.OutputPath = DefaultOutputPath
	}
}

func (f *Feed) validate() error {
	if !validSortBy[f.SortBy] {
		return fmt.Errorf("invalid sort_by %q (want lastUpdatedDate, submittedDate, or relevance)", f.SortBy)
	}
	if !validSortOrder[f.SortOrder] {
		return fmt.Errorf("invalid sort_order %q (want ascending or descending)", f.SortOrder)
	}
	return nil
}
