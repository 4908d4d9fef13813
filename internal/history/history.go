// Package history keeps per-source statistics of collection runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spigell/web3-jobs/internal/collector"
	"github.com/spigell/web3-jobs/internal/jobs"
)

// Entry is the outcome of one source in one run.
type Entry struct {
	RunAt   time.Time
	Source  string
	Fetched int
	Added   int
	// Kept is the number of jobs left after filtering.
	Kept  int
	Error string
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open history %q: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS source_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_at TEXT NOT NULL,
  source TEXT NOT NULL,
  fetched INTEGER NOT NULL DEFAULT 0,
  added INTEGER NOT NULL DEFAULT 0,
  kept INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT ''
);`,
	`CREATE INDEX IF NOT EXISTS idx_source_runs_run_at ON source_runs(run_at);`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate history: %w", err)
		}
	}
	return nil
}

// Record stores the entries of one run in a single transaction.
func (s *Store) Record(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO source_runs (run_at, source, fetched, added, kept, error)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.RunAt.UTC().Format(time.RFC3339Nano), e.Source, e.Fetched, e.Added, e.Kept, e.Error,
		); err != nil {
			return fmt.Errorf("record %s: %w", e.Source, err)
		}
	}

	return tx.Commit()
}

// Recent returns the entries of the last runs, newest run first and sources
// in recorded order within a run.
func (s *Store) Recent(ctx context.Context, runs int) ([]Entry, error) {
	if runs <= 0 {
		runs = 1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT run_at, source, fetched, added, kept, error
FROM source_runs
WHERE run_at IN (SELECT DISTINCT run_at FROM source_runs ORDER BY run_at DESC LIMIT ?)
ORDER BY run_at DESC, id ASC`, runs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e     Entry
			runAt string
		)
		if err := rows.Scan(&runAt, &e.Source, &e.Fetched, &e.Added, &e.Kept, &e.Error); err != nil {
			return nil, err
		}
		if e.RunAt, err = time.Parse(time.RFC3339Nano, runAt); err != nil {
			return nil, fmt.Errorf("parse run_at %q: %w", runAt, err)
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

// Entries converts a collection report into history entries. kept holds the
// per-source counts after filtering.
func Entries(runAt time.Time, report collector.Report, kept []jobs.SourceCount) []Entry {
	keptBy := make(map[string]int, len(kept))
	for _, c := range kept {
		keptBy[c.Source] = c.Count
	}

	out := make([]Entry, 0, len(report.Sources))
	for _, src := range report.Sources {
		e := Entry{
			RunAt:   runAt,
			Source:  src.Name,
			Fetched: src.Fetched,
			Added:   src.Added,
			Kept:    keptBy[src.Name],
		}
		if src.Err != nil {
			e.Error = src.Err.Error()
		}
		out = append(out, e)
	}
	return out
}
