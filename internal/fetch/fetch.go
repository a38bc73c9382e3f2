// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Run status values recorded in history.
const (
	StatusOK         = "ok"
	StatusFetchError = "fetch_error"
	StatusParseError = "parse_error"
	StatusIOError    = "io_error"
)

// RunRecord is the outcome of one feed run, handed to the Recorder.
type RunRecord struct {
	Feed       string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	PaperCount int
	NewCount   int
	Error      string
	OutputPath string
}

// Recorder persists run outcomes and tracks which paper IDs have been seen
// before. *history.Store implements it; a nil Recorder disables history.
type Recorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	MarkSeen(ctx context.Context, feed string, papers []types.Paper) (newCount int, err error)
}

// BatchResult summarizes a run over multiple feeds.
type BatchResult struct {
	Succeeded int
	Failed    int
	Errors    []error
}

// HasFailures reports whether any feed failed.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// RunFeed fetches one feed, writes its snapshot, and records the run.
// The first failure aborts the feed: a failed fetch or parse never touches
// the existing artifact, and a failed write leaves it intact.
func RunFeed(ctx context.Context, client *Client, feed Feed, rec Recorder, now func() time.Time, w io.Writer) error {
	started := now()

	papers, err := client.Fetch(ctx, feed)
	if err != nil {
		record(ctx, rec, feed, started, now(), 0, 0, err, w)
		return err
	}

	if err := WriteSnapshot(feed, papers, now()); err != nil {
		record(ctx, rec, feed, started, now(), len(papers), 0, err, w)
		return err
	}

	// Mark papers seen only after the artifact is durably replaced, so a
	// failed write does not eat the new-paper count of the next run.
	newCount := 0
	if rec != nil {
		n, markErr := rec.MarkSeen(ctx, feed.Name, papers)
		if markErr != nil {
			fmt.Fprintf(w, "warning: history update failed for %s: %v\n", feed.Name, markErr)
		} else {
			newCount = n
		}
	}

	record(ctx, rec, feed, started, now(), len(papers), newCount, nil, w)
	fmt.Fprintf(w, "saved %d papers (%d new) to %s\n", len(papers), newCount, feed.OutputPath)
	return nil
}

// RunAll processes feeds in order, continuing after individual failures,
// and returns a summary. The client's limiter paces the API calls.
func RunAll(ctx context.Context, client *Client, feeds []Feed, rec Recorder, now func() time.Time, w io.Writer) BatchResult {
	var result BatchResult
	for _, feed := range feeds {
		if err := RunFeed(ctx, client, feed, rec, now, w); err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", feed.Name, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("feed %s: %w", feed.Name, err))
			continue
		}
		result.Succeeded++
	}
	return result
}

// StatusFor classifies an error into a run status.
func StatusFor(err error) string {
	var fe *FetchError
	var pe *ParseError
	var ie *IOError
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &pe):
		return StatusParseError
	case errors.As(err, &ie):
		return StatusIOError
	case errors.As(err, &fe):
		return StatusFetchError
	default:
		return StatusFetchError
	}
}

func record(ctx context.Context, rec Recorder, feed Feed, started, finished time.Time, count, newCount int, runErr error, w io.Writer) {
	if rec == nil {
		return
	}
	r := RunRecord{
		Feed:       feed.Name,
		StartedAt:  started,
		FinishedAt: finished,
		Status:     StatusFor(runErr),
		PaperCount: count,
		NewCount:   newCount,
		OutputPath: feed.OutputPath,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	if err := rec.RecordRun(ctx, r); err != nil {
		fmt.Fprintf(w, "warning: recording run for %s: %v\n", feed.Name, err)
	}
}
