package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shujia/internal/media"
)

// ArticleHandler serves the upload and article routes.
type ArticleHandler struct {
	svc *media.Service
}

// NewArticleHandler creates a handler backed by the upload service.
func NewArticleHandler(svc *media.Service) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

func articleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// Upload handles POST /upload (multipart/form-data, field "file").
//
//	@Summary		Upload a file and record an article for it
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	errResponse
//	@Router			/upload [post]
func (h *ArticleHandler) Upload(w http.ResponseWriter, r *http.Request) {
	data, name, ok := readUpload(w, r, maxUploadBytes)
	if !ok {
		return
	}
	id, filePath, err := h.svc.UploadFile(r.Context(), name, data)
	if err != nil {
		writeServiceError(w, "upload file", err, slog.String("file", name))
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{
		Message:  "文件上传成功",
		FileID:   id,
		FilePath: filePath,
	})
}

// UploadImage handles POST /upload-image (multipart/form-data, field "file").
//
//	@Summary		Upload an image
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"JPEG, PNG, GIF or WebP image"
//	@Success		200		{object}	ImageUploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Router			/upload-image [post]
func (h *ArticleHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Multipart framing needs a little room beyond the image itself.
	data, name, ok := readUpload(w, r, h.svc.MaxImageBytes()+1<<20)
	if !ok {
		return
	}
	filePath, err := h.svc.UploadImage(r.Context(), name, data)
	if err != nil {
		writeServiceError(w, "upload image", err, slog.String("file", name))
		return
	}
	writeJSON(w, http.StatusOK, ImageUploadResponse{
		Message:  "图片上传成功",
		FilePath: filePath,
	})
}

// DeleteImage handles DELETE /delete-image.
//
//	@Summary		Delete an uploaded image
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Param			body	body	DeleteImageRequest	true	"Image to delete"
//	@Success		200		"{\"success\": true}"
//	@Failure		400		{object}	errResponse
//	@Router			/delete-image [delete]
func (h *ArticleHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var req DeleteImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.DeleteImage(r.Context(), req.ImagePath); err != nil {
		writeServiceError(w, "delete image", err, slog.String("path", req.ImagePath))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListArticles handles GET /articles.
//
//	@Summary		List articles
//	@Tags			articles
//	@Produce		json
//	@Success		200	{array}	models.ArticleListItem
//	@Router			/articles [get]
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Articles(r.Context())
	if err != nil {
		writeServiceError(w, "list articles", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetArticle handles GET /article/{id}.
//
//	@Summary		Get an article
//	@Tags			articles
//	@Produce		json
//	@Param			id	path		int	true	"Article id"
//	@Success		200	{object}	models.Article
//	@Failure		404	{object}	errResponse
//	@Router			/article/{id} [get]
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("article id must be an integer"))
		return
	}
	a, err := h.svc.Article(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get article", err, slog.Int64("id", id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ArticleHTML handles GET /article/{id}/html.
//
//	@Summary		Render an article's Markdown content
//	@Tags			articles
//	@Produce		html
//	@Param			id	path	int	true	"Article id"
//	@Success		200	{string}	string
//	@Failure		404	{object}	errResponse
//	@Router			/article/{id}/html [get]
func (h *ArticleHandler) ArticleHTML(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("article id must be an integer"))
		return
	}
	html, err := h.svc.RenderArticle(r.Context(), id)
	if err != nil {
		writeServiceError(w, "render article", err, slog.Int64("id", id))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// UpdateArticle handles POST /article/{id}.
//
//	@Summary		Update an article
//	@Tags			articles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Article id"
//	@Param			body	body		ArticleUpdateRequest	true	"New title and content"
//	@Success		200		{object}	ChangesResponse
//	@Failure		400		{object}	errResponse
//	@Router			/article/{id} [post]
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("article id must be an integer"))
		return
	}
	var req ArticleUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.svc.UpdateArticle(r.Context(), id, req.Title, req.Content)
	if err != nil {
		writeServiceError(w, "update article", err, slog.Int64("id", id))
		return
	}
	writeJSON(w, http.StatusOK, ChangesResponse{Message: "文章更新成功", Changes: n})
}

// DeleteArticle handles DELETE /article/{id}.
//
//	@Summary		Delete an article
//	@Tags			articles
//	@Produce		json
//	@Param			id	path		int	true	"Article id"
//	@Success		200	{object}	ChangesResponse
//	@Router			/article/{id} [delete]
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("article id must be an integer"))
		return
	}
	n, err := h.svc.DeleteArticle(r.Context(), id)
	if err != nil {
		writeServiceError(w, "delete article", err, slog.Int64("id", id))
		return
	}
	writeJSON(w, http.StatusOK, ChangesResponse{Message: "文章删除成功", Changes: n})
}

// uploadsHandler serves stored uploads without directory listings. Only
// images are served inline; anything else is sent as an attachment.
func uploadsHandler(root string) http.Handler {
	files := http.StripPrefix(strings.TrimSuffix(media.URLPrefix, "/"), http.FileServer(http.Dir(root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if !media.IsImageName(r.URL.Path) {
			w.Header().Set("Content-Disposition", "attachment")
		}
		files.ServeHTTP(w, r)
	})
}
