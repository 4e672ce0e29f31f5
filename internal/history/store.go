package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"photoclean/internal/config"
	"photoclean/internal/report"
)

// Store manages scan history persistence backed by SQLite.
type Store struct {
	db       *sql.DB
	path     string
	keepRuns int
}

// ErrRunNotFound indicates the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.HistoryDB
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, keepRuns: cfg.History.KeepRuns}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun persists a completed run with its per-file results and prunes
// runs beyond the retention limit.
func (s *Store) RecordRun(ctx context.Context, run *Run, results []report.Result) error {
	ctx = ensureContext(ctx)
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return errors.New("run with ID is required")
	}

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, started_at, finished_at, input_dir, output_dir, threshold, dry_run, interrupted, total, clean, sensitive, errors, skipped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			run.InputDir,
			run.OutputDir,
			run.Threshold,
			boolToInt(run.DryRun),
			boolToInt(run.Interrupted),
			run.Stats.Total,
			run.Stats.Clean,
			run.Stats.Sensitive,
			run.Stats.Errors,
			run.Stats.Skipped,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO results (run_id, file, score, is_sensitive, destination, error, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare result insert: %w", err)
		}
		defer stmt.Close()

		for _, result := range results {
			if _, err := stmt.ExecContext(ctx,
				run.ID,
				result.File,
				result.Score,
				boolToInt(result.IsSensitive),
				result.Destination,
				result.Error,
				formatTime(result.Timestamp),
			); err != nil {
				return fmt.Errorf("insert result for %s: %w", result.File, err)
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return err
	}

	return s.prune(ctx)
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `
SELECT id, started_at, finished_at, input_dir, output_dir, threshold, dry_run, interrupted, total, clean, sensitive, errors, skipped
FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run and its results. The id "latest" resolves to the
// most recent run.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, []report.Result, error) {
	ctx = ensureContext(ctx)

	if strings.EqualFold(strings.TrimSpace(id), "latest") {
		runs, err := s.ListRuns(ctx, 1)
		if err != nil {
			return nil, nil, err
		}
		if len(runs) == 0 {
			return nil, nil, ErrRunNotFound
		}
		id = runs[0].ID
	}

	row := s.db.QueryRowContext(ctx, `
SELECT id, started_at, finished_at, input_dir, output_dir, threshold, dry_run, interrupted, total, clean, sensitive, errors, skipped
FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrRunNotFound
		}
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT file, score, is_sensitive, destination, error, recorded_at
FROM results WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	var results []report.Result
	for rows.Next() {
		var (
			result      report.Result
			isSensitive int
			recordedAt  string
		)
		if err := rows.Scan(&result.File, &result.Score, &isSensitive, &result.Destination, &result.Error, &recordedAt); err != nil {
			return nil, nil, fmt.Errorf("scan result row: %w", err)
		}
		result.IsSensitive = isSensitive != 0
		result.Timestamp = parseTime(recordedAt)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return &run, results, nil
}

// Clear removes every recorded run and result.
func (s *Store) Clear(ctx context.Context) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM runs")
		return err
	})
}

func (s *Store) prune(ctx context.Context) error {
	if s.keepRuns <= 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
DELETE FROM runs WHERE id NOT IN (
    SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
)`, s.keepRuns)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run         Run
		startedAt   string
		finishedAt  string
		dryRun      int
		interrupted int
	)
	err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.InputDir,
		&run.OutputDir,
		&run.Threshold,
		&dryRun,
		&interrupted,
		&run.Stats.Total,
		&run.Stats.Clean,
		&run.Stats.Sensitive,
		&run.Stats.Errors,
		&run.Stats.Skipped,
	)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	run.DryRun = dryRun != 0
	run.Interrupted = interrupted != 0
	return run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	if strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
