// Package libraryservice coordinates manuscript parsing and the novel library.
package libraryservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/starford/shujia/internal/apperr"
	"github.com/starford/shujia/internal/library"
	"github.com/starford/shujia/internal/markup"
	"github.com/starford/shujia/internal/models"
	"github.com/starford/shujia/internal/parser"
	"github.com/starford/shujia/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventProgress = "progress"
	EventCleared  = "cleared"
)

// EventCallback is called after every library mutation with the novel id.
// EventCleared carries an empty id.
type EventCallback func(kind, id string)

// ChapterView is a chapter ready for display.
type ChapterView struct {
	NovelID    string `json:"novelId"`
	NovelTitle string `json:"novelTitle"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	HTML       string `json:"html"`
}

// ExportFile is a novel written back out in its source format.
type ExportFile struct {
	Name        string
	ASCIIName   string
	ContentType string
	Body        []byte
}

// Service coordinates parsing and library operations.
type Service struct {
	repo      library.Repository
	maxImport int64
	onEvent   EventCallback
}

// NewService creates a library service. maxImport bounds manuscript size in
// bytes; zero or less disables the check.
func NewService(repo library.Repository, maxImport int64) *Service {
	return &Service{repo: repo, maxImport: maxImport}
}

// OnEvent registers cb to be called after library mutations.
func (s *Service) OnEvent(cb EventCallback) {
	s.onEvent = cb
}

func (s *Service) emit(kind, id string) {
	if s.onEvent != nil {
		s.onEvent(kind, id)
	}
}

// Import parses a manuscript file and saves it. A novel with the same title
// and author is replaced; replaced reports that case.
func (s *Service) Import(_ context.Context, name string, data []byte) (*models.Novel, bool, error) {
	if s.maxImport > 0 && int64(len(data)) > s.maxImport {
		return nil, false, fmt.Errorf("%w: manuscript exceeds %d bytes", apperr.ErrInvalidInput, s.maxImport)
	}
	novel, err := parser.ParseFile(name, data)
	if err != nil {
		return nil, false, err
	}
	novel.SourceChecksum = storage.Checksum(data)

	replaced, err := s.repo.Put(novel)
	if err != nil {
		return nil, false, err
	}
	if replaced {
		s.emit(EventUpdated, novel.ID)
	} else {
		s.emit(EventCreated, novel.ID)
	}
	return novel, replaced, nil
}

// ImportedChecksums maps source names to the checksum of the manuscript
// each was last imported from.
func (s *Service) ImportedChecksums(_ context.Context) (map[string]string, error) {
	return s.repo.SourceChecksums()
}

// Preview parses manuscript text without saving it. The format comes from
// name when it is set.
func (s *Service) Preview(_ context.Context, name string, format models.SourceFormat, content string) (*models.Novel, error) {
	if name != "" {
		return parser.ParseFile(name, []byte(content))
	}
	return parser.Parse(content, format)
}

// Get returns a full novel record.
func (s *Service) Get(_ context.Context, id string) (*models.Novel, error) {
	return s.repo.Get(id)
}

// List returns summaries of every stored novel.
func (s *Service) List(_ context.Context) ([]models.NovelSummary, error) {
	return s.repo.List()
}

// Delete removes a novel.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.emit(EventDeleted, id)
	return nil
}

// Clear removes every novel.
func (s *Service) Clear(_ context.Context) error {
	if err := s.repo.Clear(); err != nil {
		return err
	}
	s.emit(EventCleared, "")
	return nil
}

// UpdateProgress records the chapter the reader reached.
func (s *Service) UpdateProgress(_ context.Context, id string, chapter int) (*models.NovelSummary, error) {
	novel, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if chapter < 0 || chapter >= len(novel.Chapters) {
		return nil, fmt.Errorf("%w: chapter %d out of range [0, %d)", apperr.ErrInvalidInput, chapter, len(novel.Chapters))
	}
	if err := s.repo.UpdateProgress(id, chapter); err != nil {
		return nil, err
	}
	novel.LastReadChapter = chapter
	s.emit(EventProgress, id)
	sum := novel.Summary()
	return &sum, nil
}

// AddBookmark bookmarks a chapter of a novel.
func (s *Service) AddBookmark(_ context.Context, id string, chapter int) (*models.Bookmark, error) {
	novel, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if chapter < 0 || chapter >= len(novel.Chapters) {
		return nil, fmt.Errorf("%w: chapter %d out of range [0, %d)", apperr.ErrInvalidInput, chapter, len(novel.Chapters))
	}
	return s.repo.AddBookmark(id, chapter)
}

// Bookmarks lists a novel's bookmarks.
func (s *Service) Bookmarks(_ context.Context, id string) ([]models.Bookmark, error) {
	if _, err := s.repo.Get(id); err != nil {
		return nil, err
	}
	return s.repo.ListBookmarks(id)
}

// DeleteBookmark removes one bookmark of a novel.
func (s *Service) DeleteBookmark(_ context.Context, id string, bookmarkID int64) error {
	return s.repo.DeleteBookmark(id, bookmarkID)
}

// Chapter returns one chapter with display markup. Plain-text chapters are
// rendered here; Markdown chapters were rendered on import.
func (s *Service) Chapter(_ context.Context, id string, index int) (*ChapterView, error) {
	novel, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	return chapterView(novel, index)
}

func chapterView(novel *models.Novel, index int) (*ChapterView, error) {
	if index < 0 || index >= len(novel.Chapters) {
		return nil, fmt.Errorf("chapter %d: %w", index, apperr.ErrNotFound)
	}
	ch := novel.Chapters[index]
	view := &ChapterView{
		NovelID:    novel.ID,
		NovelTitle: novel.Title,
		Index:      ch.Index,
		Total:      len(novel.Chapters),
		Title:      ch.Title,
		Content:    ch.Content,
		HTML:       ch.Content,
	}
	if novel.SourceFormat == models.FormatText {
		view.HTML = markup.Render(ch.Content)
	}
	return view, nil
}

// InsertImage appends an image reference on its own line at the end of a
// chapter. Plain-text chapters get the markup source; Markdown chapters,
// which are stored rendered, get the rendered fragment.
func (s *Service) InsertImage(_ context.Context, id string, index int, url, caption string) (*ChapterView, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: image url is required", apperr.ErrInvalidInput)
	}
	novel, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(novel.Chapters) {
		return nil, fmt.Errorf("chapter %d: %w", index, apperr.ErrNotFound)
	}

	ref := markup.ImageMarkdown(caption, url)
	if novel.SourceFormat == models.FormatMarkdown {
		ref = markup.Render(ref)
	}
	content := strings.TrimRight(novel.Chapters[index].Content, "\n") + "\n" + ref

	if err := s.repo.UpdateChapterContent(id, index, content); err != nil {
		return nil, err
	}
	novel.Chapters[index].Content = content
	s.emit(EventUpdated, id)
	return chapterView(novel, index)
}

// Export writes a stored novel back out in its source format.
func (s *Service) Export(_ context.Context, id string) (*ExportFile, error) {
	novel, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	ascii := slug.Make(novel.Title)
	if ascii == "" {
		ascii = "novel"
	}
	contentType := "text/plain; charset=utf-8"
	if novel.SourceFormat == models.FormatMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}
	return &ExportFile{
		Name:        parser.DownloadName(novel),
		ASCIIName:   ascii + novel.SourceFormat.Extension(),
		ContentType: contentType,
		Body:        []byte(parser.Export(novel)),
	}, nil
}

// Render converts inline markup to display markup.
func (s *Service) Render(_ context.Context, content string) string {
	return markup.Render(content)
}

// Search finds chapters containing query.
func (s *Service) Search(_ context.Context, query string, limit int) ([]library.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", apperr.ErrInvalidInput)
	}
	return s.repo.SearchChapters(strings.TrimSpace(query), limit)
}

// Stats reports library size.
func (s *Service) Stats(_ context.Context) (library.Stats, error) {
	return s.repo.Stats()
}

// IsParseFailure reports whether err came from manuscript parsing, as opposed
// to storage.
func IsParseFailure(err error) bool {
	var pe *parser.ParseError
	return errors.As(err, &pe)
}
