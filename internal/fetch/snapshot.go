// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Envelope is the metadata-object snapshot layout the original daily job
// produced. The bare-array layout is the default; consumers that want run
// metadata inside the artifact opt in per feed.
type Envelope struct {
	GeneratedAtUTC string        `json:"generated_at_utc"`
	Query          string        `json:"query"`
	MaxResults     int           `json:"max_results"`
	Count          int           `json:"count"`
	Papers         []types.Paper `json:"papers"`
}

// WriteSnapshot serializes papers and atomically replaces the artifact at
// feed.OutputPath. On any failure the previous artifact is left untouched.
// now supplies the envelope timestamp; with a fixed clock and identical
// upstream records the output is byte-for-byte reproducible.
func WriteSnapshot(feed Feed, papers []types.Paper, now time.Time) error {
	data, err := encodeSnapshot(feed, papers, now)
	if err != nil {
		return &IOError{Path: feed.OutputPath, Err: err}
	}

	dir := filepath.Dir(feed.OutputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Path: feed.OutputPath, Err: err}
	}

	// Write to a temp file in the destination directory and rename, so a
	// failed run never truncates the prior snapshot.
	tmp, err := os.CreateTemp(dir, ".arxiv-*.json")
	if err != nil {
		return &IOError{Path: feed.OutputPath, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Path: feed.OutputPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Path: feed.OutputPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Path: feed.OutputPath, Err: err}
	}
	// CreateTemp uses 0600; the published artifact must stay readable by
	// the static site serving it.
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &IOError{Path: feed.OutputPath, Err: err}
	}
	if err := os.Rename(tmpPath, feed.OutputPath); err != nil {
		os.Remove(tmpPath)
		return &IOError{Path: feed.OutputPath, Err: err}
	}
	return nil
}

// encodeSnapshot renders the artifact bytes: a two-space-indented JSON
// array of records, or the envelope object, with a trailing newline and
// no HTML escaping.
func encodeSnapshot(feed Feed, papers []types.Paper, now time.Time) ([]byte, error) {
	if papers == nil {
		papers = []types.Paper{}
	}

	var doc any = papers
	if feed.Envelope {
		doc = Envelope{
			GeneratedAtUTC: now.UTC().Format("2006-01-02T15:04:05Z"),
			Query:          feed.Query,
			MaxResults:     feed.MaxResults,
			Count:          len(papers),
			Papers:         papers,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
