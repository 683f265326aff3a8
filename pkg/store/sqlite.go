package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kottinov/website-builder/pkg/page"
)

// DefaultSQLitePath is used when no database path is configured.
const DefaultSQLitePath = ".wsb/pages.db"

// SQLite keeps one row per page in a local database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS pages (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create pages table: %w", err)
	}
	return nil
}

func (s *SQLite) get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, "SELECT body FROM pages WHERE key = ?", key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (s *SQLite) put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (key, body, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET
		 body = excluded.body,
		 updated_at = CURRENT_TIMESTAMP`,
		key, data,
	)
	return err
}

func (s *SQLite) Load(ctx context.Context, key string) (*page.Page, error) {
	return loadBlob(ctx, BackendSQLite, s, key)
}

func (s *SQLite) Save(ctx context.Context, key string, p *page.Page) error {
	return saveBlob(ctx, BackendSQLite, s, key, p)
}

// Keys lists the stored page keys in order.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM pages ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

var _ Store = (*SQLite)(nil)
