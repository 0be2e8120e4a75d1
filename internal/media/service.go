// Package media implements the upload service: stored files, article rows
// that reference them, and image validation.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/starford/shujia/internal/apperr"
	"github.com/starford/shujia/internal/library"
	"github.com/starford/shujia/internal/models"
	"github.com/starford/shujia/internal/storage"
)

// DefaultMaxImageBytes bounds image uploads when no limit is configured.
const DefaultMaxImageBytes = 5 << 20

// Service stores uploads and manages article rows.
type Service struct {
	store    storage.Provider
	articles library.ArticleStore
	maxImage int64
	md       goldmark.Markdown
	now      func() time.Time
}

// NewService creates an upload service writing into store.
func NewService(store storage.Provider, articles library.ArticleStore, maxImage int64) *Service {
	if maxImage <= 0 {
		maxImage = DefaultMaxImageBytes
	}
	return &Service{
		store:    store,
		articles: articles,
		maxImage: maxImage,
		// Raw HTML in article content is escaped (goldmark's default).
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		now: time.Now,
	}
}

// MaxImageBytes is the configured image size limit.
func (s *Service) MaxImageBytes() int64 { return s.maxImage }

// UploadFile stores a file and records an article titled after it.
func (s *Service) UploadFile(_ context.Context, original string, data []byte) (int64, string, error) {
	if original == "" {
		return 0, "", fmt.Errorf("%w: file name is required", apperr.ErrInvalidInput)
	}
	name := StoredName(original, filepath.Ext(original), s.now())
	if err := s.store.Write(name, data); err != nil {
		return 0, "", err
	}
	urlPath := URLFor(name)
	id, err := s.articles.CreateArticle(original, "", &urlPath)
	if err != nil {
		return 0, "", err
	}
	return id, urlPath, nil
}

// UploadImage validates and stores an image and returns its public path.
// The stored extension follows the sniffed content, not the file name.
func (s *Service) UploadImage(_ context.Context, original string, data []byte) (string, error) {
	if int64(len(data)) > s.maxImage {
		return "", fmt.Errorf("%w: image exceeds %d bytes", apperr.ErrInvalidInput, s.maxImage)
	}
	ext, err := DetectImage(data)
	if err != nil {
		return "", err
	}
	name := StoredName(original, ext, s.now())
	if err := s.store.Write(name, data); err != nil {
		return "", err
	}
	return URLFor(name), nil
}

// DeleteImage unlinks an image from every article and removes the file.
// A file that is already gone is not an error.
func (s *Service) DeleteImage(_ context.Context, imagePath string) error {
	if imagePath == "" {
		return fmt.Errorf("%w: image path is required", apperr.ErrInvalidInput)
	}
	name, ok := nameFromURL(imagePath)
	if !ok {
		return fmt.Errorf("%w: invalid image path %q", apperr.ErrInvalidInput, imagePath)
	}
	if _, err := s.articles.ClearImagePath(imagePath); err != nil {
		return err
	}
	if err := s.store.Delete(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Articles lists article rows without content.
func (s *Service) Articles(_ context.Context) ([]models.ArticleListItem, error) {
	return s.articles.ListArticles()
}

// Article returns one article.
func (s *Service) Article(_ context.Context, id int64) (*models.Article, error) {
	return s.articles.GetArticle(id)
}

// UpdateArticle sets an article's title and content and returns the number
// of changed rows.
func (s *Service) UpdateArticle(_ context.Context, id int64, title, content string) (int64, error) {
	return s.articles.UpdateArticle(id, title, content)
}

// DeleteArticle removes an article row and returns the number of deleted rows.
func (s *Service) DeleteArticle(_ context.Context, id int64) (int64, error) {
	return s.articles.DeleteArticle(id)
}

// RenderArticle converts an article's Markdown content to HTML.
func (s *Service) RenderArticle(ctx context.Context, id int64) (string, error) {
	a, err := s.Article(ctx, id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(a.Content), &buf); err != nil {
		return "", fmt.Errorf("media: render article: %w", err)
	}
	return buf.String(), nil
}
