package models

import "time"

// Article is an uploaded file record kept by the companion upload service.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImagePath *string   `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleListItem omits the article content.
type ArticleListItem struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImagePath *string   `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
}

// ManuscriptMetadata describes a manuscript file found by a storage provider.
type ManuscriptMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
