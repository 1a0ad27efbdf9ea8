package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// JobStatus is the terminal state recorded for one job.
type JobStatus string

const (
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Run is one batch invocation.
type Run struct {
	ID             string
	Mode           string
	OutputDir      string
	Total          int
	Done           int
	Failed         int
	Concurrency    int
	StartedAt      time.Time
	FinishedAt     time.Time
	ElapsedSeconds float64
}

// Finished reports whether the run recorded its finish event.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// JobRecord is one job's terminal outcome within a run.
type JobRecord struct {
	RunID      string
	Index      int
	Status     JobStatus
	OutputPath string
	Error      string
	FinishedAt time.Time
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies
// migrations. A file lock serializes the migration step across concurrent
// invocations sharing the same database.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("history: database path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: ensure database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: acquire migration lock: %w", err)
	}
	migrateErr := store.applyMigrations(context.Background())
	if unlockErr := lock.Unlock(); unlockErr != nil && migrateErr == nil {
		migrateErr = fmt.Errorf("history: release migration lock: %w", unlockErr)
	}
	if migrateErr != nil {
		_ = db.Close()
		return nil, migrateErr
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
func (s *Store) Path() string { return s.path }

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("history: read migrations dir: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		versions = append(versions, entry.Name())
	}
	sort.Strings(versions)

	migrations := make([]migration, 0, len(versions))
	for _, name := range versions {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("history: read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{
			version: strings.TrimSuffix(name, ".sql"),
			sql:     string(data),
		})
	}
	return migrations, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("history: ensure schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var count int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("history: scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("history: apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("history: record migration %s: %w", m.version, err)
		}
	}

	return tx.Commit()
}

// BeginRun inserts a run row when a batch starts.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, output_dir, total, concurrency, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.OutputDir, run.Total, run.Concurrency,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}
	return nil
}

// FinishRun updates a run's terminal counters when its finish event arrives.
func (s *Store) FinishRun(ctx context.Context, id string, done, failed int, elapsedSeconds float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET done = ?, failed = ?, elapsed_seconds = ?, finished_at = ? WHERE id = ?`,
		done, failed, elapsedSeconds,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("history: finish run: %w", err)
	}
	return nil
}

// RecordJob inserts one job's terminal outcome.
func (s *Store) RecordJob(ctx context.Context, record JobRecord) error {
	finished := record.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (run_id, job_index, status, output_path, error, finished_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		record.RunID, record.Index, string(record.Status),
		nullableString(record.OutputPath), nullableString(record.Error),
		finished.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: insert job: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, output_dir, total, done, failed, concurrency, started_at, finished_at, elapsed_seconds
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.ID, &run.Mode, &run.OutputDir, &run.Total, &run.Done,
			&run.Failed, &run.Concurrency, &startedAt, &finishedAt, &run.ElapsedSeconds); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			run.FinishedAt = parseTimestamp(finishedAt.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunJobs returns a run's job records in index order.
func (s *Store) RunJobs(ctx context.Context, runID string) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, job_index, status, output_path, error, finished_at
         FROM jobs WHERE run_id = ? ORDER BY job_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query jobs: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var record JobRecord
		var status, finishedAt string
		var outputPath, errMsg sql.NullString
		if err := rows.Scan(&record.RunID, &record.Index, &status, &outputPath, &errMsg, &finishedAt); err != nil {
			return nil, fmt.Errorf("history: scan job: %w", err)
		}
		record.Status = JobStatus(status)
		record.OutputPath = outputPath.String
		record.Error = errMsg.String
		record.FinishedAt = parseTimestamp(finishedAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
