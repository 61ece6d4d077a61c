// Package history provides a SQLite-backed journal of submitted
// retrieval jobs.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/viewengine/viewctl/internal/api"
	"github.com/viewengine/viewctl/internal/models"
)

// Record is one journaled submission. Status tracks the last observed
// job status, or "error" when the lifecycle failed before a terminal
// status was seen.
type Record struct {
	ID           string
	URL          string
	Mode         string
	ForceRefresh bool
	RequestID    string
	Status       string
	ErrorDetail  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store provides access to the journal database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the journal location under the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".viewctl", "history.db"), nil
}

// New creates a Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		mode TEXT NOT NULL,
		force_refresh INTEGER NOT NULL DEFAULT 0,
		request_id TEXT NOT NULL,
		status TEXT NOT NULL,
		error_detail TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_request_id ON jobs(request_id);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordSubmission journals a newly acknowledged job and returns the
// journal record ID.
func (s *Store) RecordSubmission(req models.SubmissionRequest, handle models.JobHandle) (string, error) {
	now := time.Now().UTC()
	id := uuid.New().String()

	status := string(handle.InitialStatus)
	if status == "" {
		status = string(models.JobStatusQueued)
	}

	_, err := s.db.Exec(
		`INSERT INTO jobs (id, url, mode, force_refresh, request_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, req.URL, string(req.Mode), boolToInt(req.ForceRefresh), handle.RequestID, status, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// RecordOutcome updates a journal record with the terminal snapshot or,
// when the lifecycle errored, the last known state and the error text.
func (s *Store) RecordOutcome(id string, snapshot *models.JobStatusSnapshot, runErr error) error {
	status := "error"
	errorDetail := ""

	switch {
	case runErr != nil:
		errorDetail = runErr.Error()
		// A poll timeout carries the last known snapshot; keep its
		// status for diagnostics instead of the bare "error".
		var svcErr *api.ServiceError
		if errors.As(runErr, &svcErr) && svcErr.LastSnapshot != nil {
			status = string(svcErr.LastSnapshot.Status)
		}
	case snapshot != nil:
		status = string(snapshot.Status)
		errorDetail = snapshot.ErrorDetail
	}

	res, err := s.db.Exec(
		`UPDATE jobs SET status = ?, error_detail = ?, updated_at = ? WHERE id = ?`,
		status, errorDetail, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job record %s not found", id)
	}
	return nil
}

// List returns the most recent records, newest first. limit <= 0 means
// no limit.
func (s *Store) List(limit int) ([]Record, error) {
	query := `SELECT id, url, mode, force_refresh, request_id, status, error_detail, created_at, updated_at FROM jobs ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Get retrieves a record by journal ID or by service request ID.
// Returns nil when no record matches.
func (s *Store) Get(id string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT id, url, mode, force_refresh, request_id, status, error_detail, created_at, updated_at FROM jobs WHERE id = ? OR request_id = ?`,
		id, id,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner) (*Record, error) {
	rec := &Record{}
	var forceRefresh int
	var errorDetail sql.NullString

	err := sc.Scan(&rec.ID, &rec.URL, &rec.Mode, &forceRefresh, &rec.RequestID, &rec.Status, &errorDetail, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	rec.ForceRefresh = forceRefresh != 0
	if errorDetail.Valid {
		rec.ErrorDetail = errorDetail.String
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
