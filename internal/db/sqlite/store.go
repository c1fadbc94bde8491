// Package sqlite implements db.Store on a local SQLite file via the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a SQLite store.
type Config struct {
	Path string
}

// Store implements db.Store on a single SQLite database file.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database file and applies the
// schema.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer at a time; a single pooled connection avoids
	// SQLITE_BUSY under concurrent use.
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: sqlDB}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, &db.Error{Op: db.OpMigrate, Err: err}
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		external_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		source_name TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		normalized_url TEXT NOT NULL DEFAULT '',
		author_id TEXT NOT NULL DEFAULT '',
		author_name TEXT NOT NULL DEFAULT '',
		author_followers INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		shares INTEGER NOT NULL DEFAULT 0,
		replies INTEGER NOT NULL DEFAULT 0,
		published_at INTEGER NOT NULL,
		timestamp_inferred BOOLEAN NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL DEFAULT 0,
		breakdown TEXT NOT NULL DEFAULT '',
		fetched_at INTEGER NOT NULL DEFAULT 0,
		UNIQUE(external_id, kind)
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id),
		type TEXT NOT NULL,
		weight REAL NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS summaries (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_published_at ON items(published_at);
	CREATE INDEX IF NOT EXISTS idx_items_score ON items(score);
	CREATE INDEX IF NOT EXISTS idx_items_kind_score ON items(kind, score);
	CREATE INDEX IF NOT EXISTS idx_feedback_item_id ON feedback(item_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the database handle.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
