//go:build !sqlite_fts5

package library

import "database/sql"

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the chapters table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ int, _, _ string) error { return nil }

func ftsDeleteNovel(_ *sql.Tx, _ string) {}

func ftsDeleteChapter(_ *sql.Tx, _ string, _ int) {}

func ftsClear(_ *sql.Tx) {}

// SearchChapters performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) SearchChapters(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return db.likeSearch(query, limit)
}
