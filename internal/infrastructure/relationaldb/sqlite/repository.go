// Package sqlite provides SQLite implementations of the catalog review stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/catalog-review/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements the proposal, catalog, audit and user stores using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// dsn appends per-connection pragmas. Transactions take the write lock at BEGIN
// so read-modify-write upserts never fail on lock upgrade.
func dsn(path string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	if path != ":memory:" {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Canonical catalog records; fields and history are JSON documents
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		fields TEXT NOT NULL DEFAULT '{}',
		history TEXT NOT NULL DEFAULT '[]',
		ready INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Single-field corrections
	CREATE TABLE IF NOT EXISTS corrections (
		id TEXT PRIMARY KEY,
		group_id TEXT,
		record_id TEXT,
		record_slug TEXT NOT NULL,
		record_title TEXT,
		submitter_id TEXT NOT NULL,
		submitter_name TEXT,
		submitted_at TIMESTAMP NOT NULL,
		field TEXT NOT NULL,
		old_value TEXT,
		new_value TEXT,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		reviewer_id TEXT,
		reviewer_name TEXT,
		reviewed_at TIMESTAMP,
		review_notes TEXT,
		final_value TEXT,
		notification_threads TEXT NOT NULL DEFAULT '[]'
	);
	CREATE INDEX IF NOT EXISTS idx_corrections_status ON corrections(status, submitted_at);
	CREATE INDEX IF NOT EXISTS idx_corrections_record ON corrections(record_slug);

	-- Whole-record submissions
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		group_id TEXT,
		record_slug TEXT NOT NULL,
		record_title TEXT,
		submitter_id TEXT NOT NULL,
		submitter_name TEXT,
		submitted_at TIMESTAMP NOT NULL,
		proposed_data TEXT NOT NULL DEFAULT '{}',
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		reviewer_id TEXT,
		reviewer_name TEXT,
		reviewed_at TIMESTAMP,
		review_notes TEXT,
		notification_threads TEXT NOT NULL DEFAULT '[]'
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, submitted_at);
	CREATE INDEX IF NOT EXISTS idx_submissions_slug ON submissions(record_slug, status);

	-- Append-only field change ledger
	CREATE TABLE IF NOT EXISTS audit_ledger (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		record_slug TEXT NOT NULL,
		field TEXT NOT NULL,
		before_value TEXT,
		after_value TEXT,
		change TEXT NOT NULL,
		author_id TEXT,
		author_name TEXT,
		reviewer_id TEXT,
		reviewer_name TEXT,
		reason TEXT,
		review_notes TEXT,
		correction_id TEXT,
		submission_id TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_ledger_record ON audit_ledger(record_slug);

	-- Accounts
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL
	);

	-- Contribution counters
	CREATE TABLE IF NOT EXISTS user_counters (
		user_id TEXT NOT NULL,
		counter TEXT NOT NULL,
		value INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, counter)
	);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// encodeJSON marshals v for a TEXT column. nil stays NULL.
func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshaling value: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeValue unmarshals a stored field value. Arrays of strings come back as []string.
func decodeValue(s sql.NullString) (any, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, fmt.Errorf("unmarshaling value: %w", err)
	}
	return normalizeDecoded(v), nil
}

func normalizeDecoded(v any) any {
	arr, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return v
		}
		out = append(out, s)
	}
	return out
}

// decodeFields unmarshals a JSON object of field values.
func decodeFields(s string) (map[string]any, error) {
	fields := make(map[string]any)
	if s == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling fields: %w", err)
	}
	for k, v := range fields {
		fields[k] = normalizeDecoded(v)
	}
	return fields, nil
}

func decodeThreads(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var threads []string
	if err := json.Unmarshal([]byte(s), &threads); err != nil {
		return nil, fmt.Errorf("unmarshaling threads: %w", err)
	}
	if len(threads) == 0 {
		return nil, nil
	}
	return threads, nil
}

func encodeThreads(threads []string) (string, error) {
	if threads == nil {
		threads = []string{}
	}
	data, err := json.Marshal(threads)
	if err != nil {
		return "", fmt.Errorf("marshaling threads: %w", err)
	}
	return string(data), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
