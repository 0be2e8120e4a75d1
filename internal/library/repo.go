package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/shujia/internal/apperr"
	"github.com/starford/shujia/internal/models"
)

const novelColumns = `id, title, author, source_format, source_name, source_checksum, last_read_chapter, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNovel(r rowScanner) (*models.Novel, error) {
	var n models.Novel
	var format string
	if err := r.Scan(&n.ID, &n.Title, &n.Author, &format, &n.SourceName, &n.SourceChecksum, &n.LastReadChapter, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.SourceFormat = models.SourceFormat(format)
	return &n, nil
}

// recordSize is the stored size of a novel, measured as its JSON encoding.
func recordSize(n *models.Novel) int64 {
	data, err := json.Marshal(n)
	if err != nil {
		return 0
	}
	return int64(len(data))
}

// Get returns the novel with its chapters in index order.
func (db *DB) Get(id string) (*models.Novel, error) {
	n, err := scanNovel(db.conn.QueryRow(`SELECT `+novelColumns+` FROM novels WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("library: get novel: %w", err)
	}
	if n.Chapters, err = db.chapters(id); err != nil {
		return nil, err
	}
	return n, nil
}

func (db *DB) chapters(novelID string) ([]models.Chapter, error) {
	rows, err := db.conn.Query(`SELECT id, title, content, idx FROM chapters WHERE novel_id = ? ORDER BY idx`, novelID)
	if err != nil {
		return nil, fmt.Errorf("library: chapters: %w", err)
	}
	defer rows.Close()

	out := []models.Chapter{}
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.ID, &ch.Title, &ch.Content, &ch.Index); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// List returns a summary of every novel, newest first.
func (db *DB) List() ([]models.NovelSummary, error) {
	rows, err := db.conn.Query(`
		SELECT n.id, n.title, n.author, n.source_format, n.last_read_chapter, n.created_at,
		       (SELECT count(*) FROM chapters c WHERE c.novel_id = n.id)
		FROM novels n
		ORDER BY n.created_at DESC, n.rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	defer rows.Close()

	out := []models.NovelSummary{}
	for rows.Next() {
		var s models.NovelSummary
		var format string
		if err := rows.Scan(&s.ID, &s.Title, &s.Author, &format, &s.LastReadChapter, &s.CreatedAt, &s.ChapterCount); err != nil {
			return nil, err
		}
		s.SourceFormat = models.SourceFormat(format)
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindByTitleAuthor returns the novel with exactly this title and author.
func (db *DB) FindByTitleAuthor(title, author string) (*models.Novel, error) {
	var id string
	err := db.conn.QueryRow(`SELECT id FROM novels WHERE title = ? AND author = ? LIMIT 1`, title, author).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("library: find novel: %w", err)
	}
	return db.Get(id)
}

// Put inserts n or replaces the record it collides with, inside a transaction.
func (db *DB) Put(n *models.Novel) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("library: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var (
		existingID string
		createdAt  time.Time
	)
	err = tx.QueryRow(`SELECT id, created_at FROM novels WHERE id = ?`, n.ID).Scan(&existingID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRow(`SELECT id, created_at FROM novels WHERE title = ? AND author = ? LIMIT 1`,
			n.Title, n.Author).Scan(&existingID, &createdAt)
	}
	replaced := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("library: lookup novel: %w", err)
	}

	if replaced {
		n.ID = existingID
		n.CreatedAt = createdAt
	} else if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO novels (id, title, author, source_format, source_name, source_checksum,
		                    last_read_chapter, size_bytes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title             = excluded.title,
			author            = excluded.author,
			source_format     = excluded.source_format,
			source_name       = excluded.source_name,
			source_checksum   = excluded.source_checksum,
			last_read_chapter = excluded.last_read_chapter,
			size_bytes        = excluded.size_bytes,
			updated_at        = excluded.updated_at
	`, n.ID, n.Title, n.Author, string(n.SourceFormat), n.SourceName, n.SourceChecksum,
		n.LastReadChapter, recordSize(n), n.CreatedAt, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("library: upsert novel: %w", err)
	}

	// Replace chapters: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM chapters WHERE novel_id = ?`, n.ID); err != nil {
		return false, fmt.Errorf("library: clear chapters: %w", err)
	}
	ftsDeleteNovel(tx, n.ID)
	if _, err := tx.Exec(`DELETE FROM bookmarks WHERE novel_id = ? AND chapter_idx >= ?`, n.ID, len(n.Chapters)); err != nil {
		return false, fmt.Errorf("library: prune bookmarks: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO chapters (novel_id, idx, id, title, content) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return false, fmt.Errorf("library: prepare chapter insert: %w", err)
	}
	defer stmt.Close()
	for _, ch := range n.Chapters {
		if _, err := stmt.Exec(n.ID, ch.Index, ch.ID, ch.Title, ch.Content); err != nil {
			return false, fmt.Errorf("library: insert chapter: %w", err)
		}
		if err := ftsUpsert(tx, n.ID, ch.Index, ch.Title, ch.Content); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("library: commit: %w", err)
	}
	return replaced, nil
}

// Delete removes a novel with its chapters and bookmarks.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("library: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteNovel(tx, id)
	res, err := tx.Exec(`DELETE FROM novels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("library: delete novel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}

// UpdateProgress records the last chapter read. The caller validates the range.
func (db *DB) UpdateProgress(id string, chapter int) error {
	res, err := db.conn.Exec(`UPDATE novels SET last_read_chapter = ?, updated_at = ? WHERE id = ?`,
		chapter, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("library: update progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateChapterContent replaces the stored content of one chapter.
func (db *DB) UpdateChapterContent(id string, index int, content string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("library: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var title, old string
	err = tx.QueryRow(`SELECT title, content FROM chapters WHERE novel_id = ? AND idx = ?`, id, index).Scan(&title, &old)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("library: load chapter: %w", err)
	}

	if _, err := tx.Exec(`UPDATE chapters SET content = ? WHERE novel_id = ? AND idx = ?`, content, id, index); err != nil {
		return fmt.Errorf("library: update chapter: %w", err)
	}
	if _, err := tx.Exec(`UPDATE novels SET size_bytes = size_bytes + ?, updated_at = ? WHERE id = ?`,
		len(content)-len(old), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("library: update size: %w", err)
	}
	ftsDeleteChapter(tx, id, index)
	if err := ftsUpsert(tx, id, index, title, content); err != nil {
		return err
	}
	return tx.Commit()
}

// Stats counts novels and their stored size.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`SELECT count(*), coalesce(sum(size_bytes), 0) FROM novels`).Scan(&s.Novels, &s.Bytes)
	if err != nil {
		return Stats{}, fmt.Errorf("library: stats: %w", err)
	}
	return s, nil
}

// Clear removes every novel.
func (db *DB) Clear() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("library: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsClear(tx)
	if _, err := tx.Exec(`DELETE FROM bookmarks`); err != nil {
		return fmt.Errorf("library: clear bookmarks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM chapters`); err != nil {
		return fmt.Errorf("library: clear chapters: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM novels`); err != nil {
		return fmt.Errorf("library: clear novels: %w", err)
	}
	return tx.Commit()
}

// SourceChecksums returns source name → checksum for imported manuscripts.
func (db *DB) SourceChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT source_name, source_checksum FROM novels WHERE source_name != ''`)
	if err != nil {
		return nil, fmt.Errorf("library: source checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}
