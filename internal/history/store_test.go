// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-harvester/internal/fetch"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(feed, status string) fetch.RunRecord {
	started := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)
	return fetch.RunRecord{
		Feed:       feed,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Status:     status,
		PaperCount: 12,
		NewCount:   3,
		OutputPath: "data/arxiv.json",
	}
}

func TestStoreCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.HistoryConfig{DataDir: filepath.Join(dir, "nested")})
	require.NoError(t, err, "data directory is created as needed")
	defer s.Close()

	assert.FileExists(t, filepath.Join(dir, "nested", "harvester.db"))
}

func TestRecordAndListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRun(ctx, sampleRecord("default", fetch.StatusOK)))

	failed := sampleRecord("default", fetch.StatusFetchError)
	failed.PaperCount = 0
	failed.NewCount = 0
	failed.Error = "arXiv API returned HTTP 500"
	require.NoError(t, s.RecordRun(ctx, failed))

	runs, err := s.Runs(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, fetch.StatusFetchError, runs[0].Status)
	assert.Equal(t, "arXiv API returned HTTP 500", runs[0].Error)
	assert.Equal(t, fetch.StatusOK, runs[1].Status)
	assert.Equal(t, 12, runs[1].PaperCount)
	assert.Equal(t, 3, runs[1].NewCount)
	assert.Equal(t, "data/arxiv.json", runs[1].OutputPath)
	assert.Equal(t, 2026, runs[1].StartedAt.Year())
}

func TestRunsFilterByFeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRun(ctx, sampleRecord("llm", fetch.StatusOK)))
	require.NoError(t, s.RecordRun(ctx, sampleRecord("quantum", fetch.StatusOK)))

	runs, err := s.Runs(ctx, QueryOptions{Feed: "llm"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "llm", runs[0].Feed)
}

func TestRunsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordRun(ctx, sampleRecord("default", fetch.StatusOK)))
	}

	runs, err := s.Runs(ctx, QueryOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestMarkSeenCountsNewPapers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	papers := []types.Paper{
		{ID: "http://arxiv.org/abs/2301.07041v1", Title: "A"},
		{ID: "http://arxiv.org/abs/2302.00001v2", Title: "B"},
	}

	n, err := s.MarkSeen(ctx, "default", papers)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Second run: same papers, nothing new.
	n, err = s.MarkSeen(ctx, "default", papers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// A later run with one extra paper counts only the extra.
	papers = append(papers, types.Paper{ID: "http://arxiv.org/abs/2303.12345v1", Title: "C"})
	n, err = s.MarkSeen(ctx, "default", papers)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMarkSeenSkipsEmptyIDs(t *testing.T) {
	s := newTestStore(t)

	n, err := s.MarkSeen(context.Background(), "default", []types.Paper{{ID: "", Title: "no id"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := types.HistoryConfig{DataDir: dir}
	ctx := context.Background()

	s, err := NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, s.RecordRun(ctx, sampleRecord("default", fetch.StatusOK)))
	require.NoError(t, s.Close())

	// Reopening finds the existing schema and data.
	s2, err := NewStore(cfg)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.Runs(ctx, QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	assert.Contains(t, buf.String(), "No runs recorded.")

	buf.Reset()
	runs := []Run{
		{
			Feed:       "default",
			StartedAt:  time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC),
			Status:     fetch.StatusOK,
			PaperCount: 12,
			NewCount:   3,
		},
	}
	FormatTable(runs, &buf)
	out := buf.String()
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "2026-08-23 06:00:00")
	assert.Contains(t, out, "1 runs")
}

func TestFormatJSON(t *testing.T) {
	runs := []Run{{Feed: "default", Status: fetch.StatusOK, PaperCount: 12}}

	var buf bytes.Buffer
	require.NoError(t, FormatJSON(runs, &buf))

	var decoded []Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "default", decoded[0].Feed)
}
