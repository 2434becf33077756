package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Flow identifies which pipeline produced a record.
type Flow string

const (
	FlowUpload   Flow = "upload"
	FlowDownload Flow = "download"
)

// Outcome is the terminal result of a job.
type Outcome string

const (
	OutcomeDone   Outcome = "done"
	OutcomeFailed Outcome = "failed"
)

// Record is one finished job.
type Record struct {
	ID         int64
	UserID     int64
	Flow       Flow
	Action     string
	Subject    string
	Outcome    Outcome
	Detail     string
	DurationMS int64
	CreatedAt  time.Time
}

// Counts aggregates the ledger for the status surface.
type Counts struct {
	Total  int64
	Done   int64
	Failed int64
}

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database in dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "history.db")
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

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
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
func (s *Store) Path() string { return s.path }

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS job_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        flow TEXT NOT NULL,
        action TEXT NOT NULL,
        subject TEXT NOT NULL,
        outcome TEXT NOT NULL,
        detail TEXT,
        duration_ms INTEGER NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_job_history_user ON job_history(user_id);
    CREATE INDEX IF NOT EXISTS idx_job_history_created ON job_history(created_at);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Append inserts a finished job and returns it with its assigned id.
func (s *Store) Append(ctx context.Context, record Record) (Record, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO job_history (
            user_id, flow, action, subject, outcome, detail, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UserID,
		string(record.Flow),
		record.Action,
		record.Subject,
		string(record.Outcome),
		nullableString(record.Detail),
		record.DurationMS,
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("last insert id: %w", err)
	}
	record.ID = id
	return record, nil
}

// Recent returns the newest records, optionally filtered by user.
func (s *Store) Recent(ctx context.Context, userID int64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, user_id, flow, action, subject, outcome, detail, duration_ms, created_at
        FROM job_history`
	args := []any{}
	if userID != 0 {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Tally aggregates outcome counts across the whole ledger.
func (s *Store) Tally(ctx context.Context) (Counts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM job_history GROUP BY outcome`)
	if err != nil {
		return Counts{}, fmt.Errorf("tally records: %w", err)
	}
	defer rows.Close()

	var counts Counts
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return Counts{}, fmt.Errorf("scan tally: %w", err)
		}
		counts.Total += n
		switch Outcome(outcome) {
		case OutcomeDone:
			counts.Done += n
		case OutcomeFailed:
			counts.Failed += n
		}
	}
	if err := rows.Err(); err != nil {
		return Counts{}, fmt.Errorf("iterate tally: %w", err)
	}
	return counts, nil
}

// PruneOlderThan deletes records past the retention window and reports how
// many were removed.
func (s *Store) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM job_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune records: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var record Record
	var flow, outcome, createdAt string
	var detail sql.NullString
	if err := scanner.Scan(
		&record.ID,
		&record.UserID,
		&flow,
		&record.Action,
		&record.Subject,
		&outcome,
		&detail,
		&record.DurationMS,
		&createdAt,
	); err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	record.Flow = Flow(flow)
	record.Outcome = Outcome(outcome)
	record.Detail = detail.String
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = parsed
	}
	return record, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
