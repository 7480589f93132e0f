package catalogcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/stacklok/formsync-server/internal/catalog"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS catalog_cache (
	cache_key  TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLiteBackend persists listings in a local SQLite file so they survive
// restarts. Concurrent writers are last-writer-wins.
type SQLiteBackend struct {
	db *sql.DB
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens (creating if needed) the cache database at path
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		sqliteSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the underlying database
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get implements Backend
func (b *SQLiteBackend) Get(ctx context.Context, key string, now time.Time) ([]catalog.Entry, bool, error) {
	var (
		data      []byte
		expiresAt int64
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM catalog_cache WHERE cache_key = ?`, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if now.UnixMilli() >= expiresAt {
		if _, err := b.db.ExecContext(ctx,
			`DELETE FROM catalog_cache WHERE cache_key = ? AND expires_at <= ?`, key, now.UnixMilli(),
		); err != nil {
			return nil, false, fmt.Errorf("failed to purge cache entry: %w", err)
		}
		return nil, false, nil
	}

	var entries []catalog.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return entries, true, nil
}

// Set implements Backend
func (b *SQLiteBackend) Set(ctx context.Context, key string, entries []catalog.Entry, expiresAt time.Time) error {
	if entries == nil {
		entries = []catalog.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO catalog_cache (cache_key, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, data, expiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}
