//go:build sqlite_fts5

package library

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"
)

// The trigram tokenizer matches CJK text, which has no word separators.
const minTrigramQuery = 3

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chapters_fts USING fts5(
			novel_id UNINDEXED,
			idx UNINDEXED,
			title,
			content,
			tokenize = 'trigram'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, novelID string, idx int, title, content string) error {
	_, err := tx.Exec(`INSERT INTO chapters_fts (novel_id, idx, title, content) VALUES (?, ?, ?, ?)`,
		novelID, idx, title, content)
	if err != nil {
		return fmt.Errorf("library: upsert fts: %w", err)
	}
	return nil
}

func ftsDeleteNovel(tx *sql.Tx, novelID string) {
	_, _ = tx.Exec(`DELETE FROM chapters_fts WHERE novel_id = ?`, novelID)
}

func ftsDeleteChapter(tx *sql.Tx, novelID string, idx int) {
	_, _ = tx.Exec(`DELETE FROM chapters_fts WHERE novel_id = ? AND idx = ?`, novelID, idx)
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM chapters_fts`)
}

// SearchChapters performs an FTS5 phrase search and returns hits with
// escaped snippets.
func (db *DB) SearchChapters(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if utf8.RuneCountInString(query) < minTrigramQuery {
		return db.likeSearch(query, limit)
	}
	phrase := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
	rows, err := db.conn.Query(`
		SELECT chapters_fts.novel_id, n.title, chapters_fts.idx, chapters_fts.title, chapters_fts.content
		FROM chapters_fts
		JOIN novels n ON n.id = chapters_fts.novel_id
		WHERE chapters_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, phrase, limit)
	if err != nil {
		return nil, fmt.Errorf("library: search: %w", err)
	}
	defer rows.Close()

	out := []SearchHit{}
	for rows.Next() {
		var h SearchHit
		var content string
		if err := rows.Scan(&h.NovelID, &h.NovelTitle, &h.ChapterIndex, &h.Title, &content); err != nil {
			return nil, err
		}
		h.Snippet = makeSnippet(content, query)
		out = append(out, h)
	}
	return out, rows.Err()
}
