package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore on a SQLite database. It trades the
// flat-file layout for crash-safe writes at the same one-row-per-user
// granularity.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed session store at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS user_threads (
		user_id TEXT PRIMARY KEY,
		thread_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get looks up the thread handle for a user.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT thread_id FROM user_threads WHERE user_id = ?`, userID)

	var threadID string
	err := row.Scan(&threadID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("scan thread row: %w", err)
	}
	return threadID, true, nil
}

// GetOrCreate returns the existing handle or creates, persists, and returns a
// new one.
func (s *SQLiteStore) GetOrCreate(ctx context.Context, userID string, create CreateThreadFunc) (string, error) {
	threadID, ok, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if ok {
		return threadID, nil
	}

	threadID, err = create(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_threads (user_id, thread_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			thread_id = excluded.thread_id,
			updated_at = excluded.updated_at`,
		userID, threadID, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert thread mapping: %w", err)
	}
	return threadID, nil
}

// Reset removes the user's entry if present.
func (s *SQLiteStore) Reset(ctx context.Context, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_threads WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("delete thread mapping: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
