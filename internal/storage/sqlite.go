package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultHistoryLimit is how many previous values are kept per key.
const DefaultHistoryLimit = 20

// SQLiteStore is a key-value slot backed by a single SQLite table. Every
// save also appends to a bounded history table so earlier snapshots can be
// inspected or restored.
type SQLiteStore struct {
	db           *sql.DB
	historyLimit int
}

// Revision is one historical value of a key.
type Revision struct {
	ID      int64
	Key     string
	Value   []byte
	SavedAt time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps SQLite from returning SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, historyLimit: DefaultHistoryLimit}, nil
}

// SetHistoryLimit changes how many revisions per key are retained. Zero disables history.
func (s *SQLiteStore) SetHistoryLimit(n int) {
	if n < 0 {
		n = 0
	}
	s.historyLimit = n
}

// HistoryLimit reports how many revisions per key are retained.
func (s *SQLiteStore) HistoryLimit() int {
	return s.historyLimit
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns the value stored under key or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", key, err)
	}
	return value, nil
}

// Save replaces the value under key and records it in the history table.
func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("save key %q: %w", key, err)
	}

	if s.historyLimit > 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO kv_history (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("append history for %q: %w", key, err)
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM kv_history WHERE key = ? AND id NOT IN (
				SELECT id FROM kv_history WHERE key = ? ORDER BY id DESC LIMIT ?
			)`, key, key, s.historyLimit)
		if err != nil {
			return fmt.Errorf("prune history for %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.DebugContext(ctx, "State saved to SQLite", "key", key, "bytes", len(value))
	return nil
}

// History returns up to limit previous values of key, newest first.
func (s *SQLiteStore) History(ctx context.Context, key string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, value, saved_at FROM kv_history WHERE key = ? ORDER BY id DESC LIMIT ?`,
		key, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.Key, &r.Value, &r.SavedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Revision returns a single history entry by id.
func (s *SQLiteStore) Revision(ctx context.Context, id int64) (Revision, error) {
	var r Revision
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key, value, saved_at FROM kv_history WHERE id = ?`, id).
		Scan(&r.ID, &r.Key, &r.Value, &r.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, ErrNotFound
	}
	if err != nil {
		return Revision{}, fmt.Errorf("load revision %d: %w", id, err)
	}
	return r, nil
}
