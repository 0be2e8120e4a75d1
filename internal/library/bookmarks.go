package library

import (
	"fmt"
	"time"

	"github.com/starford/shujia/internal/apperr"
	"github.com/starford/shujia/internal/models"
)

// AddBookmark records a bookmark on a chapter. The caller validates the range.
func (db *DB) AddBookmark(novelID string, chapter int) (*models.Bookmark, error) {
	b := &models.Bookmark{NovelID: novelID, ChapterIndex: chapter, CreatedAt: time.Now().UTC()}
	res, err := db.conn.Exec(`INSERT INTO bookmarks (novel_id, chapter_idx, created_at) VALUES (?, ?, ?)`,
		novelID, chapter, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("library: insert bookmark: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("library: bookmark id: %w", err)
	}
	return b, nil
}

// ListBookmarks returns a novel's bookmarks, oldest first.
func (db *DB) ListBookmarks(novelID string) ([]models.Bookmark, error) {
	rows, err := db.conn.Query(`
		SELECT id, novel_id, chapter_idx, created_at
		FROM bookmarks WHERE novel_id = ? ORDER BY id
	`, novelID)
	if err != nil {
		return nil, fmt.Errorf("library: list bookmarks: %w", err)
	}
	defer rows.Close()

	out := []models.Bookmark{}
	for rows.Next() {
		var b models.Bookmark
		if err := rows.Scan(&b.ID, &b.NovelID, &b.ChapterIndex, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBookmark removes one bookmark of a novel.
func (db *DB) DeleteBookmark(novelID string, id int64) error {
	res, err := db.conn.Exec(`DELETE FROM bookmarks WHERE id = ? AND novel_id = ?`, id, novelID)
	if err != nil {
		return fmt.Errorf("library: delete bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
