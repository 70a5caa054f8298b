// ABOUTME: SQLite-backed Store implementation over database/sql
// ABOUTME: Opens with WAL and foreign keys, creates the schema on startup

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("database ready", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS user_profiles (
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, profile_id)
	);

	CREATE TABLE IF NOT EXISTS courses (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		category   TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS topics (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		message    TEXT NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('unanswered', 'unsolved', 'solved', 'closed')),
		author_id  TEXT NOT NULL REFERENCES users(id),
		course_id  TEXT NOT NULL REFERENCES courses(id),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_topics_course ON topics(course_id);
	CREATE INDEX IF NOT EXISTS idx_topics_created ON topics(created_at);

	CREATE TABLE IF NOT EXISTS replies (
		id         TEXT PRIMARY KEY,
		topic_id   TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		message    TEXT NOT NULL,
		author_id  TEXT NOT NULL REFERENCES users(id),
		solution   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_replies_topic ON replies(topic_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection, for health checks.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Timestamps are stored as RFC3339 UTC strings.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
// modernc.org/sqlite surfaces these as plain errors, so match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
