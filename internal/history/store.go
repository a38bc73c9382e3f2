// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists run outcomes in a SQLite database so operators
// can see what the harvester did and which papers were new on each run.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/arxiv-harvester/internal/fetch"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

const dbFile = "harvester.db"

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at dataDir/harvester.db,
// creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			feed TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			status TEXT NOT NULL,
			paper_count INTEGER NOT NULL,
			new_count INTEGER NOT NULL,
			error TEXT,
			output_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_feed ON runs(feed)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			first_seen_feed TEXT NOT NULL,
			first_seen_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun inserts one run outcome. Implements fetch.Recorder.
func (s *Store) RecordRun(ctx context.Context, rec fetch.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (feed, started_at, finished_at, status, paper_count, new_count, error, output_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Feed,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Status,
		rec.PaperCount,
		rec.NewCount,
		rec.Error,
		rec.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// MarkSeen records papers not seen before and returns how many were new.
// Implements fetch.Recorder.
func (s *Store) MarkSeen(ctx context.Context, feed string, papers []types.Paper) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO papers (id, title, first_seen_feed, first_seen_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	newCount := 0
	for _, p := range papers {
		if p.ID == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, p.ID, p.Title, feed, now)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			newCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return newCount, nil
}

// Run is one row from the runs table.
type Run struct {
	Feed       string    `json:"feed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	PaperCount int       `json:"paper_count"`
	NewCount   int       `json:"new_count"`
	Error      string    `json:"error,omitempty"`
	OutputPath string    `json:"output_path"`
}

// QueryOptions filters the run listing.
type QueryOptions struct {
	// Feed restricts results to one feed name; empty matches all.
	Feed string

	// Limit caps the number of rows; 0 uses the store default.
	Limit int
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, opts QueryOptions) ([]Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	query := `SELECT feed, started_at, finished_at, status, paper_count, new_count, error, output_path
	          FROM runs`
	var args []any
	if opts.Feed != "" {
		query += ` WHERE feed = ?`
		args = append(args, opts.Feed)
	}
	query += ` ORDER BY rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		var errText, outputPath sql.NullString
		if err := rows.Scan(&r.Feed, &started, &finished, &r.Status,
			&r.PaperCount, &r.NewCount, &errText, &outputPath); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		r.Error = errText.String
		r.OutputPath = outputPath.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FormatTable writes runs as a human-readable table to w.
func FormatTable(runs []Run, w io.Writer) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-12s  %-11s  %6s  %4s  %s\n",
		"Started", "Feed", "Status", "Papers", "New", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, r := range runs {
		errText := r.Error
		if len(errText) > 40 {
			errText = errText[:37] + "..."
		}
		fmt.Fprintf(w, "%-20s  %-12s  %-11s  %6d  %4d  %s\n",
			r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			r.Feed, r.Status, r.PaperCount, r.NewCount, errText)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}

// FormatJSON writes runs as indented JSON to w.
func FormatJSON(runs []Run, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}
