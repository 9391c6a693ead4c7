// Package thumbcache stores generated thumbnails in a SQLite database so
// repeated runs over a directory only re-render images that changed. Entries
// are keyed by source path and thumbnail size and validated against the
// source file's modification time.
package thumbcache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Cache is a thumbnail store backed by a single SQLite file.
// All methods are safe for concurrent use.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS thumbnails (
			source TEXT NOT NULL,
			size INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			png BLOB NOT NULL,
			PRIMARY KEY (source, size)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Get returns the cached PNG for (source, size) if it exists and was rendered
// from a file with the given modification time. A stale or missing entry
// returns ok=false with a nil error.
func (c *Cache) Get(source string, mtime time.Time, size int) ([]byte, bool, error) {
	var storedMtime int64
	var png []byte
	err := c.db.QueryRow(
		"SELECT mtime, png FROM thumbnails WHERE source=? AND size=?",
		source, size,
	).Scan(&storedMtime, &png)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query thumbnail: %w", err)
	}
	if storedMtime != mtime.Unix() {
		return nil, false, nil
	}
	return png, true, nil
}

// Put stores or replaces the thumbnail for (source, size).
func (c *Cache) Put(source string, mtime time.Time, size int, png []byte) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO thumbnails (source, size, mtime, png) VALUES (?, ?, ?, ?)",
		source, size, mtime.Unix(), png,
	)
	if err != nil {
		return fmt.Errorf("failed to store thumbnail: %w", err)
	}
	return nil
}

// Len returns the number of cached thumbnails.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM thumbnails").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count thumbnails: %w", err)
	}
	return n, nil
}

// Prune removes entries whose source no longer passes keep.
func (c *Cache) Prune(keep func(source string) bool) (int, error) {
	rows, err := c.db.Query("SELECT DISTINCT source FROM thumbnails")
	if err != nil {
		return 0, fmt.Errorf("failed to list sources: %w", err)
	}
	var stale []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan source: %w", err)
		}
		if !keep(source) {
			stale = append(stale, source)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating sources: %w", err)
	}

	removed := 0
	for _, source := range stale {
		res, err := c.db.Exec("DELETE FROM thumbnails WHERE source=?", source)
		if err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", source, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}
	return removed, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}
	return nil
}
