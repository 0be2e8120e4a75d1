package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/shujia/internal/apperr"
	"github.com/starford/shujia/internal/libraryservice"
	"github.com/starford/shujia/internal/models"
	"github.com/starford/shujia/internal/parser"
)

const (
	maxJSONBytes   = 10 << 20
	maxUploadBytes = 50 << 20
)

// Handler holds library API route handlers.
type Handler struct {
	svc *libraryservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *libraryservice.Service) *Handler {
	return &Handler{svc: svc}
}

// decodeJSON reads a JSON body into v and validates it. It writes the 400
// response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if vv, ok := v.(validation.Validatable); ok {
		if err := vv.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}

// readUpload returns the bytes and client file name of the multipart "file" field.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("file too large"))
		} else {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		}
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return nil, "", false
	}
	return data, header.Filename, true
}

// writeServiceError maps domain and parse errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, op string, err error, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, parser.ErrUnsupportedFormat):
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody(err.Error()))
	case libraryservice.IsParseFailure(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func chapterIndex(r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	return idx, err == nil
}

// ImportNovel handles POST /api/novels.
//
//	@Summary		Import a manuscript file
//	@Tags			novels
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Manuscript (.txt or .md)"
//	@Success		201		{object}	NovelDetail
//	@Success		200		{object}	NovelDetail	"Replaced a novel with the same title and author"
//	@Failure		400		{object}	errResponse
//	@Failure		415		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels [post]
func (h *Handler) ImportNovel(w http.ResponseWriter, r *http.Request) {
	data, name, ok := readUpload(w, r, maxUploadBytes)
	if !ok {
		return
	}
	novel, replaced, err := h.svc.Import(r.Context(), name, data)
	if err != nil {
		writeServiceError(w, "import novel", err, slog.String("file", name))
		return
	}
	status := http.StatusCreated
	if replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, novel)
}

// ListNovels handles GET /api/novels.
//
//	@Summary		List novels
//	@Tags			novels
//	@Produce		json
//	@Success		200	{object}	NovelListResponse
//	@Security		BearerAuth
//	@Router			/novels [get]
func (h *Handler) ListNovels(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, "list novels", err)
		return
	}
	writeJSON(w, http.StatusOK, NovelListResponse{Novels: items, Total: len(items)})
}

// GetNovel handles GET /api/novels/{id}.
//
//	@Summary		Get a full novel record
//	@Tags			novels
//	@Produce		json
//	@Param			id	path		string	true	"Novel id"
//	@Success		200	{object}	NovelDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id} [get]
func (h *Handler) GetNovel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	novel, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get novel", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, novel)
}

// DeleteNovel handles DELETE /api/novels/{id}.
//
//	@Summary		Delete a novel
//	@Tags			novels
//	@Param			id	path	string	true	"Novel id"
//	@Success		204	"Novel deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id} [delete]
func (h *Handler) DeleteNovel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "delete novel", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearNovels handles DELETE /api/novels.
//
//	@Summary		Delete every novel
//	@Tags			novels
//	@Success		204	"Library cleared"
//	@Security		BearerAuth
//	@Router			/novels [delete]
func (h *Handler) ClearNovels(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		writeServiceError(w, "clear novels", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateProgress handles PUT /api/novels/{id}/progress.
//
//	@Summary		Save reading progress
//	@Tags			novels
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Novel id"
//	@Param			body	body		ProgressRequest	true	"Chapter reached"
//	@Success		200		{object}	NovelSummary
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id}/progress [put]
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sum, err := h.svc.UpdateProgress(r.Context(), id, *req.Chapter)
	if err != nil {
		writeServiceError(w, "update progress", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// AddBookmark handles POST /api/novels/{id}/bookmarks.
//
//	@Summary		Bookmark a chapter
//	@Tags			bookmarks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Novel id"
//	@Param			body	body		BookmarkRequest	true	"Chapter to bookmark"
//	@Success		201		{object}	Bookmark
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id}/bookmarks [post]
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req BookmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.AddBookmark(r.Context(), id, *req.Chapter)
	if err != nil {
		writeServiceError(w, "add bookmark", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// ListBookmarks handles GET /api/novels/{id}/bookmarks.
//
//	@Summary		List a novel's bookmarks
//	@Tags			bookmarks
//	@Produce		json
//	@Param			id	path		string	true	"Novel id"
//	@Success		200	{object}	BookmarkListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id}/bookmarks [get]
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, err := h.svc.Bookmarks(r.Context(), id)
	if err != nil {
		writeServiceError(w, "list bookmarks", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, BookmarkListResponse{Bookmarks: list})
}

// DeleteBookmark handles DELETE /api/novels/{id}/bookmarks/{bookmarkId}.
//
//	@Summary		Delete a bookmark
//	@Tags			bookmarks
//	@Param			id			path	string	true	"Novel id"
//	@Param			bookmarkId	path	int		true	"Bookmark id"
//	@Success		204			"Bookmark deleted"
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id}/bookmarks/{bookmarkId} [delete]
func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bookmarkID, err := strconv.ParseInt(chi.URLParam(r, "bookmarkId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bookmark id must be an integer"))
		return
	}
	if err := h.svc.DeleteBookmark(r.Context(), id, bookmarkID); err != nil {
		writeServiceError(w, "delete bookmark", err, slog.String("id", id), slog.Int64("bookmark", bookmarkID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetChapter handles GET /api/novels/{id}/chapters/{index}.
//
//	@Summary		Get a chapter with display markup
//	@Tags			novels
//	@Produce		json
//	@Param			id		path		string	true	"Novel id"
//	@Param			index	path		int		true	"Chapter index"
//	@Success		200		{object}	ChapterView
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id}/chapters/{index} [get]
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idx, ok := chapterIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("chapter index must be an integer"))
		return
	}
	view, err := h.svc.Chapter(r.Context(), id, idx)
	if err != nil {
		writeServiceError(w, "get chapter", err, slog.String("id", id), slog.Int("index", idx))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// InsertImage handles POST /api/novels/{id}/chapters/{index}/images.
//
//	@Summary		Append an image to the end of a chapter
//	@Tags			novels
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Novel id"
//	@Param			index	path		int					true	"Chapter index"
//	@Param			body	body		InsertImageRequest	true	"Image reference"
//	@Success		200		{object}	ChapterView
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id}/chapters/{index}/images [post]
func (h *Handler) InsertImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idx, ok := chapterIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("chapter index must be an integer"))
		return
	}
	var req InsertImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.svc.InsertImage(r.Context(), id, idx, req.URL, req.Caption)
	if err != nil {
		writeServiceError(w, "insert image", err, slog.String("id", id), slog.Int("index", idx))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ExportNovel handles GET /api/novels/{id}/export.
//
//	@Summary		Download a novel in its source format
//	@Tags			novels
//	@Produce		plain
//	@Param			id	path		string	true	"Novel id"
//	@Success		200	{file}		file
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{id}/export [get]
func (h *Handler) ExportNovel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := h.svc.Export(r.Context(), id)
	if err != nil {
		writeServiceError(w, "export novel", err, slog.String("id", id))
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		f.ASCIIName, url.PathEscape(f.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Body)
}

// ParseManuscript handles POST /api/parse.
//
//	@Summary		Parse manuscript text without saving it
//	@Tags			parser
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Manuscript"
//	@Success		200		{object}	NovelDetail
//	@Failure		400		{object}	errResponse
//	@Failure		415		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse [post]
func (h *Handler) ParseManuscript(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	novel, err := h.svc.Preview(r.Context(), req.Filename, models.SourceFormat(req.Format), req.Content)
	if err != nil {
		writeServiceError(w, "parse manuscript", err, slog.String("file", req.Filename))
		return
	}
	writeJSON(w, http.StatusOK, novel)
}

// RenderMarkup handles POST /api/render.
//
//	@Summary		Render inline markup to HTML
//	@Tags			parser
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Markup"
//	@Success		200		{object}	RenderResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) RenderMarkup(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{HTML: h.svc.Render(r.Context(), req.Content)})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across chapters
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Stats handles GET /api/stats.
//
//	@Summary		Report library size
//	@Tags			library
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(stats))
}
