package library

import (
	"fmt"
	"strings"
)

const defaultSearchLimit = 20

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// likeSearch scans chapter titles and content with LIKE. It serves builds
// without FTS5 and queries too short for the trigram tokenizer.
func (db *DB) likeSearch(query string, limit int) ([]SearchHit, error) {
	like := likePattern(query)
	rows, err := db.conn.Query(`
		SELECT c.novel_id, n.title, c.idx, c.title, c.content
		FROM chapters c
		JOIN novels n ON n.id = c.novel_id
		WHERE c.title LIKE ? ESCAPE '\' OR c.content LIKE ? ESCAPE '\'
		ORDER BY n.created_at DESC, c.idx
		LIMIT ?
	`, like, like, limit)
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
