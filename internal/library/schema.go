// Package library provides the SQLite-backed novel library with optional
// FTS5 chapter search, plus the article table of the upload service.
package library

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS novels (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	author            TEXT NOT NULL,
	source_format     TEXT NOT NULL,
	source_name       TEXT NOT NULL DEFAULT '',
	source_checksum   TEXT NOT NULL DEFAULT '',
	last_read_chapter INTEGER NOT NULL DEFAULT 0,
	size_bytes        INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_novels_title_author ON novels(title, author);
CREATE INDEX IF NOT EXISTS idx_novels_source_name ON novels(source_name);

CREATE TABLE IF NOT EXISTS chapters (
	novel_id TEXT NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	idx      INTEGER NOT NULL,
	id       TEXT NOT NULL,
	title    TEXT NOT NULL,
	content  TEXT NOT NULL,
	PRIMARY KEY (novel_id, idx)
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	novel_id    TEXT NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	chapter_idx INTEGER NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_novel ON bookmarks(novel_id);

CREATE TABLE IF NOT EXISTS articles (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT,
	content    TEXT,
	image_path TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with library-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("library: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("library: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("library: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("library: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
