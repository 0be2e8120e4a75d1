package api

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/shujia/internal/library"
	"github.com/starford/shujia/internal/libraryservice"
	"github.com/starford/shujia/internal/models"
)

// NovelDetail is the full novel record (aliased from the domain layer).
type NovelDetail = models.Novel

// NovelSummary is a lightweight item in a list response (aliased from the domain layer).
type NovelSummary = models.NovelSummary

// ChapterView is a chapter with display markup (aliased from the domain layer).
type ChapterView = libraryservice.ChapterView

// SearchHit is a single search hit (aliased from the domain layer).
type SearchHit = library.SearchHit

// NovelListResponse wraps novel listings.
type NovelListResponse struct {
	Novels []NovelSummary `json:"novels" validate:"required"`
	Total  int            `json:"total" example:"3" validate:"required"`
}

// ProgressRequest is the request body for saving reading progress.
type ProgressRequest struct {
	Chapter *int `json:"chapter" example:"4" validate:"required"`
}

// Validate validates the progress request.
func (r ProgressRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Chapter, validation.NotNil, validation.Min(0)),
	)
}

// Bookmark is a bookmarked chapter.
type Bookmark = models.Bookmark

// BookmarkRequest is the request body for bookmarking a chapter.
type BookmarkRequest struct {
	Chapter *int `json:"chapter" example:"2" validate:"required"`
}

// Validate validates the bookmark request.
func (r BookmarkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Chapter, validation.NotNil, validation.Min(0)),
	)
}

// BookmarkListResponse wraps a novel's bookmarks.
type BookmarkListResponse struct {
	Bookmarks []Bookmark `json:"bookmarks" validate:"required"`
}

// InsertImageRequest is the request body for appending an image to a chapter.
type InsertImageRequest struct {
	URL     string `json:"url" example:"/uploads/1700000000000-cover.png" validate:"required"`
	Caption string `json:"caption" example:"插图"`
}

// Validate validates the image request.
func (r InsertImageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, validation.Length(1, 2048)),
		validation.Field(&r.Caption, validation.Length(0, 200)),
	)
}

// ParseRequest is the request body for previewing a manuscript.
// Filename selects the format by extension; Format is used when it is empty.
type ParseRequest struct {
	Filename string `json:"filename" example:"围城.txt"`
	Format   string `json:"format" example:"md" enums:"txt,md"`
	Content  string `json:"content" example:"# 标题\n## 第一章\n正文" validate:"required"`
}

// Validate validates the parse request.
func (r ParseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Format,
			validation.When(r.Filename == "", validation.Required.Error("filename or format is required")),
			validation.In(string(models.FormatText), string(models.FormatMarkdown)),
		),
		validation.Field(&r.Content, validation.Required),
	)
}

// RenderRequest is the request body for rendering inline markup.
type RenderRequest struct {
	Content string `json:"content" example:"**加粗** 与 *斜体*"`
}

// RenderResponse holds rendered markup.
type RenderResponse struct {
	HTML string `json:"html" example:"<p class=\"mb-4\"><strong>加粗</strong></p>" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchHit `json:"results" validate:"required"`
}

// StatsResponse reports library size.
type StatsResponse struct {
	Novels int    `json:"novels" example:"2" validate:"required"`
	Bytes  int64  `json:"bytes" example:"524288" validate:"required"`
	Size   string `json:"size" example:"0.50 MB" validate:"required"`
}

func newStatsResponse(s library.Stats) StatsResponse {
	return StatsResponse{
		Novels: s.Novels,
		Bytes:  s.Bytes,
		Size:   fmt.Sprintf("%.2f MB", float64(s.Bytes)/(1<<20)),
	}
}

// UploadResponse is returned after a file upload.
type UploadResponse struct {
	Message  string `json:"message" example:"文件上传成功" validate:"required"`
	FileID   int64  `json:"fileId" example:"7" validate:"required"`
	FilePath string `json:"filePath" example:"/uploads/1700000000000-notes.txt" validate:"required"`
}

// ImageUploadResponse is returned after an image upload.
type ImageUploadResponse struct {
	Message  string `json:"message" example:"图片上传成功" validate:"required"`
	FilePath string `json:"filePath" example:"/uploads/1700000000000-cover.png" validate:"required"`
}

// ArticleUpdateRequest is the request body for updating an article.
type ArticleUpdateRequest struct {
	Title   string `json:"title" example:"读书笔记"`
	Content string `json:"content" example:"# 摘录"`
}

// Validate validates the article update.
func (r ArticleUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 255)),
	)
}

// ChangesResponse reports how many article rows a request touched.
type ChangesResponse struct {
	Message string `json:"message" example:"文章更新成功" validate:"required"`
	Changes int64  `json:"changes" example:"1" validate:"required"`
}

// DeleteImageRequest is the request body for deleting an uploaded image.
type DeleteImageRequest struct {
	ImagePath string `json:"imagePath" example:"/uploads/1700000000000-cover.png" validate:"required"`
}

// Validate validates the delete request.
func (r DeleteImageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ImagePath, validation.Required.Error("缺少 imagePath 参数")),
	)
}
