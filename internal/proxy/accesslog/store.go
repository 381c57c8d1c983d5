// Package accesslog records artifact fetch activity in a small sqlite
// database so the mirror task can pre-warm the most requested artifacts.
package accesslog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifact_access (
	key         TEXT PRIMARY KEY,
	hits        INTEGER NOT NULL DEFAULT 0,
	last_access INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifact_access_hits ON artifact_access (hits DESC);
`

// Store is the access log database handle.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create accesslog dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply accesslog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record bumps the hit counter for key.
func (s *Store) Record(ctx context.Context, key string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifact_access (key, hits, last_access) VALUES (?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET hits = hits + 1, last_access = excluded.last_access`,
		key, now.Unix())
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	return nil
}

// Hits returns the hit count for key, 0 when unknown.
func (s *Store) Hits(ctx context.Context, key string) (int64, error) {
	var hits int64
	err := s.db.QueryRowContext(ctx,
		`SELECT hits FROM artifact_access WHERE key = ?`, key).Scan(&hits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query hits: %w", err)
	}
	return hits, nil
}

// Top returns the n most requested artifact keys, most popular first.
func (s *Store) Top(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM artifact_access
		ORDER BY hits DESC, last_access DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query top artifacts: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan artifact key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
