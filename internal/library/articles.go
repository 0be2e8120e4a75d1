package library

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/shujia/internal/apperr"
	"github.com/starford/shujia/internal/models"
)

// CreateArticle inserts an article row and returns its id.
func (db *DB) CreateArticle(title, content string, imagePath *string) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO articles (title, content, image_path) VALUES (?, ?, ?)`,
		title, content, imagePath)
	if err != nil {
		return 0, fmt.Errorf("library: insert article: %w", err)
	}
	return res.LastInsertId()
}

// ListArticles returns every article without its content.
func (db *DB) ListArticles() ([]models.ArticleListItem, error) {
	rows, err := db.conn.Query(`SELECT id, coalesce(title, ''), image_path, created_at FROM articles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("library: list articles: %w", err)
	}
	defer rows.Close()

	out := []models.ArticleListItem{}
	for rows.Next() {
		var a models.ArticleListItem
		if err := rows.Scan(&a.ID, &a.Title, &a.ImagePath, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetArticle returns one article.
func (db *DB) GetArticle(id int64) (*models.Article, error) {
	var a models.Article
	err := db.conn.QueryRow(`
		SELECT id, coalesce(title, ''), coalesce(content, ''), image_path, created_at
		FROM articles WHERE id = ?
	`, id).Scan(&a.ID, &a.Title, &a.Content, &a.ImagePath, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("library: get article: %w", err)
	}
	return &a, nil
}

// UpdateArticle sets title and content and returns the number of changed rows.
func (db *DB) UpdateArticle(id int64, title, content string) (int64, error) {
	res, err := db.conn.Exec(`UPDATE articles SET title = ?, content = ? WHERE id = ?`, title, content, id)
	if err != nil {
		return 0, fmt.Errorf("library: update article: %w", err)
	}
	return res.RowsAffected()
}

// DeleteArticle removes an article and returns the number of deleted rows.
func (db *DB) DeleteArticle(id int64) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("library: delete article: %w", err)
	}
	return res.RowsAffected()
}

// ClearImagePath unsets image_path on every article that references path.
func (db *DB) ClearImagePath(path string) (int64, error) {
	res, err := db.conn.Exec(`UPDATE articles SET image_path = NULL WHERE image_path = ?`, path)
	if err != nil {
		return 0, fmt.Errorf("library: clear image path: %w", err)
	}
	return res.RowsAffected()
}
