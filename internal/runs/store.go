package runs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vadseg/internal/fileutil"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users delete the ledger database to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Statuses recorded per processed file.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one batch invocation.
type Run struct {
	ID         string
	Kind       string
	InputPath  string
	OutPath    string
	Workers    int
	StartedAt  time.Time
	FinishedAt *time.Time
	Total      int
	Succeeded  int
	Failed     int
}

// FileRecord is the ledger row for one processed input.
type FileRecord struct {
	RunID        string
	Input        string
	Output       string
	Status       string
	ErrorKind    string
	ErrorMessage string
	Elapsed      time.Duration
}

// Store persists batch run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run ledger database.
func Open(path string) (*Store, error) {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path}
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts a new run row and returns it with a fresh identifier.
func (s *Store) BeginRun(ctx context.Context, kind, inputPath, outPath string, workers int) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		InputPath: inputPath,
		OutPath:   outPath,
		Workers:   workers,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, input_path, out_path, workers, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.InputPath, run.OutPath, run.Workers,
		run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordFile appends the outcome of one processed input to the ledger.
func (s *Store) RecordFile(ctx context.Context, rec FileRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_files (run_id, input, output, status, error_kind, error_message, elapsed_ms)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Input, nullableString(rec.Output), rec.Status,
		nullableString(rec.ErrorKind), nullableString(rec.ErrorMessage),
		rec.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run file: %w", err)
	}
	return nil
}

// FinishRun stamps the run's completion time and outcome counts.
func (s *Store) FinishRun(ctx context.Context, runID string, total, succeeded, failed int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, succeeded = ?, failed = ? WHERE id = ?`,
		now, total, succeeded, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, input_path, out_path, workers, started_at, finished_at, total, succeeded, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Kind, &run.InputPath, &run.OutPath, &run.Workers,
			&startedAt, &finishedAt, &run.Total, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = ts
		}
		if finishedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
				run.FinishedAt = &ts
			}
		}
		result = append(result, run)
	}
	return result, rows.Err()
}

// RunFiles returns the per-file outcomes of a run in insertion order.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, input, output, status, error_kind, error_message, elapsed_ms
         FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var result []FileRecord
	for rows.Next() {
		var (
			rec       FileRecord
			output    sql.NullString
			errKind   sql.NullString
			errMsg    sql.NullString
			elapsedMS int64
		)
		if err := rows.Scan(&rec.RunID, &rec.Input, &output, &rec.Status, &errKind, &errMsg, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		rec.Output = output.String
		rec.ErrorKind = errKind.String
		rec.ErrorMessage = errMsg.String
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		result = append(result, rec)
	}
	return result, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
