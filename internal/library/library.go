package library

import "github.com/starford/shujia/internal/models"

// Repository is the system of record for novels. Consumers depend on this
// interface rather than on *DB.
type Repository interface {
	Get(id string) (*models.Novel, error)
	List() ([]models.NovelSummary, error)
	// Put stores n. A record with the same id, or else the same title and
	// author, is replaced in place and keeps its id and creation time; n is
	// updated to reflect that. replaced reports whether that happened.
	Put(n *models.Novel) (replaced bool, err error)
	Delete(id string) error
	FindByTitleAuthor(title, author string) (*models.Novel, error)
	UpdateProgress(id string, chapter int) error
	UpdateChapterContent(id string, index int, content string) error
	SearchChapters(query string, limit int) ([]SearchHit, error)
	Stats() (Stats, error)
	Clear() error
	AddBookmark(novelID string, chapter int) (*models.Bookmark, error)
	ListBookmarks(novelID string) ([]models.Bookmark, error)
	DeleteBookmark(novelID string, id int64) error
	// SourceChecksums maps source names to the checksum of the manuscript
	// they were last imported from.
	SourceChecksums() (map[string]string, error)
}

// ArticleStore keeps the rows of the upload service.
type ArticleStore interface {
	CreateArticle(title, content string, imagePath *string) (int64, error)
	ListArticles() ([]models.ArticleListItem, error)
	GetArticle(id int64) (*models.Article, error)
	UpdateArticle(id int64, title, content string) (int64, error)
	DeleteArticle(id int64) (int64, error)
	ClearImagePath(path string) (int64, error)
}

// SearchHit is one chapter matching a search query.
type SearchHit struct {
	NovelID      string `json:"novelId"`
	NovelTitle   string `json:"novelTitle"`
	ChapterIndex int    `json:"chapterIndex"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
}

// Stats summarises what the library holds.
type Stats struct {
	Novels int   `json:"novels"`
	Bytes  int64 `json:"bytes"`
}

var (
	_ Repository   = (*DB)(nil)
	_ ArticleStore = (*DB)(nil)
)
