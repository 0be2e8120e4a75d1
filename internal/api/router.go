package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shujia/internal/libraryservice"
	"github.com/starford/shujia/internal/media"
)

// NewRouter creates a chi router with the library API routes, meant to be
// mounted under /api. authEnabled controls whether Bearer token auth is
// enforced. sseHandler, if non-nil, is mounted at GET /events inside the auth
// group.
func NewRouter(svc *libraryservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/novels", func(r chi.Router) {
		r.Get("/", h.ListNovels)
		r.Post("/", h.ImportNovel)
		r.Delete("/", h.ClearNovels)
		r.Get("/{id}", h.GetNovel)
		r.Delete("/{id}", h.DeleteNovel)
		r.Put("/{id}/progress", h.UpdateProgress)
		r.Get("/{id}/bookmarks", h.ListBookmarks)
		r.Post("/{id}/bookmarks", h.AddBookmark)
		r.Delete("/{id}/bookmarks/{bookmarkId}", h.DeleteBookmark)
		r.Get("/{id}/chapters/{index}", h.GetChapter)
		r.Post("/{id}/chapters/{index}/images", h.InsertImage)
		r.Get("/{id}/export", h.ExportNovel)
	})

	r.Post("/parse", h.ParseManuscript)
	r.Post("/render", h.RenderMarkup)
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// RegisterUploadRoutes adds the upload and article routes to r and serves
// stored files from uploadRoot under /uploads/.
func RegisterUploadRoutes(r chi.Router, svc *media.Service, uploadRoot string) {
	h := NewArticleHandler(svc)

	r.Post("/upload", h.Upload)
	r.Post("/upload-image", h.UploadImage)
	r.Delete("/delete-image", h.DeleteImage)

	r.Get("/articles", h.ListArticles)
	r.Get("/article/{id}", h.GetArticle)
	r.Get("/article/{id}/html", h.ArticleHTML)
	r.Post("/article/{id}", h.UpdateArticle)
	r.Delete("/article/{id}", h.DeleteArticle)

	r.Handle(media.URLPrefix+"*", uploadsHandler(uploadRoot))
}
