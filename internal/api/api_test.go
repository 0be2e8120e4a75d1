package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shujia/internal/libraryservice"
	"github.com/starford/shujia/internal/media"
	"github.com/starford/shujia/internal/models"
	"github.com/starford/shujia/internal/sse"
	"github.com/starford/shujia/internal/testutil"
)

const (
	textBook     = "围城\n作者：钱钟书\n第一章 开端\n红海早过了。\n第二章 上岸\n船到了上海。"
	markdownBook = "# 春天的故事\n作者：方鸿渐\n\n## 第一章 新的开始\n内容**A**\n\n## 第二章 成长\n内容B"
)

// testEnv sets up a temp upload root, SQLite DB, services and the full
// router tree. A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*libraryservice.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvWithUploads(t, authToken, nil)
	return svc, router
}

func testEnvWithUploads(t *testing.T, authToken string, sseHandler http.Handler) (*libraryservice.Service, http.Handler, string) {
	t.Helper()

	uploadDir, store := testutil.TestStore(t)
	db := testutil.TestDB(t)

	svc := libraryservice.NewService(db, 1<<20)
	msvc := media.NewService(store, db, 1<<10)

	r := chi.NewRouter()
	r.Use(CORS(nil))
	r.Mount("/api", NewRouter(svc, authToken != "", authToken, sseHandler))
	RegisterUploadRoutes(r, msvc, uploadDir)
	return svc, r, uploadDir
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func uploadFile(t *testing.T, router http.Handler, target, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func importNovel(t *testing.T, router http.Handler, filename, content string) models.Novel {
	t.Helper()
	w := uploadFile(t, router, "/api/novels", filename, []byte(content))
	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}
	var n models.Novel
	if err := json.NewDecoder(w.Body).Decode(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImportAndGetNovel(t *testing.T) {
	_, router := testEnv(t, "")

	novel := importNovel(t, router, "weicheng.txt", textBook)
	if novel.Title != "围城" || novel.Author != "钱钟书" || len(novel.Chapters) != 2 {
		t.Fatalf("novel = %+v", novel)
	}

	w := do(t, router, http.MethodGet, "/api/novels/"+novel.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Novel
	_ = json.NewDecoder(w.Body).Decode(&got)
	if got.ID != novel.ID || got.SourceFormat != models.FormatText {
		t.Errorf("got = %+v", got)
	}
}

func TestImportNovel_ReplaceReturns200(t *testing.T) {
	_, router := testEnv(t, "")
	first := importNovel(t, router, "a.txt", textBook)

	w := uploadFile(t, router, "/api/novels", "b.txt", []byte(textBook))
	if w.Code != http.StatusOK {
		t.Fatalf("replace status = %d", w.Code)
	}
	var again models.Novel
	_ = json.NewDecoder(w.Body).Decode(&again)
	if again.ID != first.ID {
		t.Errorf("id changed: %q -> %q", first.ID, again.ID)
	}
}

func TestImportNovel_Errors(t *testing.T) {
	_, router := testEnv(t, "")

	if w := uploadFile(t, router, "/api/novels", "book.epub", []byte("x")); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("epub = %d, want 415", w.Code)
	}
	if w := uploadFile(t, router, "/api/novels", "empty.md", []byte("   ")); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty = %d, want 422", w.Code)
	}
	if w := uploadFile(t, router, "/api/novels", "title.md", []byte("# 只有标题")); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("title only = %d, want 422", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/novels", strings.NewReader("not multipart"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("no multipart = %d, want 400", w.Code)
	}
}

func TestListAndDeleteNovels(t *testing.T) {
	_, router := testEnv(t, "")
	a := importNovel(t, router, "a.txt", textBook)
	importNovel(t, router, "b.md", markdownBook)

	w := do(t, router, http.MethodGet, "/api/novels", nil)
	var list NovelListResponse
	_ = json.NewDecoder(w.Body).Decode(&list)
	if list.Total != 2 || len(list.Novels) != 2 {
		t.Fatalf("list = %+v", list)
	}

	if w := do(t, router, http.MethodDelete, "/api/novels/"+a.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/api/novels/"+a.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/api/novels", nil); w.Code != http.StatusNoContent {
		t.Errorf("clear = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/api/stats", nil)
	var stats StatsResponse
	_ = json.NewDecoder(w.Body).Decode(&stats)
	if stats.Novels != 0 || stats.Bytes != 0 || stats.Size != "0.00 MB" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetNovel_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/api/novels/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateProgress(t *testing.T) {
	_, router := testEnv(t, "")
	novel := importNovel(t, router, "a.txt", textBook)

	w := do(t, router, http.MethodPut, "/api/novels/"+novel.ID+"/progress", map[string]int{"chapter": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var sum models.NovelSummary
	_ = json.NewDecoder(w.Body).Decode(&sum)
	if sum.LastReadChapter != 1 || sum.ChapterCount != 2 {
		t.Errorf("summary = %+v", sum)
	}

	if w := do(t, router, http.MethodPut, "/api/novels/"+novel.ID+"/progress", map[string]int{"chapter": 9}); w.Code != http.StatusBadRequest {
		t.Errorf("out of range = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/api/novels/"+novel.ID+"/progress", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing chapter = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/api/novels/"+novel.ID+"/progress", map[string]int{"chapter": -1}); w.Code != http.StatusBadRequest {
		t.Errorf("negative chapter = %d, want 400", w.Code)
	}
}

func TestBookmarks(t *testing.T) {
	_, router := testEnv(t, "")
	novel := importNovel(t, router, "a.txt", textBook)
	base := "/api/novels/" + novel.ID + "/bookmarks"

	w := do(t, router, http.MethodPost, base, map[string]int{"chapter": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
	}
	var b models.Bookmark
	_ = json.NewDecoder(w.Body).Decode(&b)
	if b.ID == 0 || b.NovelID != novel.ID || b.ChapterIndex != 1 {
		t.Errorf("bookmark = %+v", b)
	}

	if w := do(t, router, http.MethodPost, base, map[string]int{"chapter": 2}); w.Code != http.StatusBadRequest {
		t.Errorf("out of range = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, base, map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing chapter = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/novels/missing/bookmarks", map[string]int{"chapter": 0}); w.Code != http.StatusNotFound {
		t.Errorf("missing novel = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodGet, base, nil)
	var list BookmarkListResponse
	_ = json.NewDecoder(w.Body).Decode(&list)
	if w.Code != http.StatusOK || len(list.Bookmarks) != 1 || list.Bookmarks[0].ID != b.ID {
		t.Fatalf("list = %d %+v", w.Code, list)
	}

	id := strconv.FormatInt(b.ID, 10)
	if w := do(t, router, http.MethodDelete, base+"/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodDelete, base+"/"+id, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodDelete, base+"/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestGetChapter(t *testing.T) {
	_, router := testEnv(t, "")
	novel := importNovel(t, router, "b.md", markdownBook)

	w := do(t, router, http.MethodGet, "/api/novels/"+novel.ID+"/chapters/0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var view ChapterView
	_ = json.NewDecoder(w.Body).Decode(&view)
	if view.Title != "第一章 新的开始" || view.Total != 2 || !strings.Contains(view.HTML, "<strong>A</strong>") {
		t.Errorf("view = %+v", view)
	}

	if w := do(t, router, http.MethodGet, "/api/novels/"+novel.ID+"/chapters/5", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing chapter = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/api/novels/"+novel.ID+"/chapters/x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad index = %d, want 400", w.Code)
	}
}

func TestInsertImage(t *testing.T) {
	_, router := testEnv(t, "")
	novel := importNovel(t, router, "a.txt", textBook)

	target := "/api/novels/" + novel.ID + "/chapters/1/images"
	w := do(t, router, http.MethodPost, target, map[string]string{"url": "/uploads/1-a.png", "caption": "码头"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var view ChapterView
	_ = json.NewDecoder(w.Body).Decode(&view)
	if !strings.HasSuffix(view.Content, "![码头](/uploads/1-a.png)") {
		t.Errorf("content = %q", view.Content)
	}

	if w := do(t, router, http.MethodPost, target, map[string]string{"caption": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing url = %d, want 400", w.Code)
	}
}

func TestExportNovel(t *testing.T) {
	_, router := testEnv(t, "")
	novel := importNovel(t, router, "b.md", markdownBook)

	w := do(t, router, http.MethodGet, "/api/novels/"+novel.ID+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment; filename=\"") || !strings.Contains(cd, "filename*=UTF-8''%E6%98%A5") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "# 春天的故事\n作者：方鸿渐\n") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestParseEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/api/parse", ParseRequest{Format: "md", Content: markdownBook})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var n models.Novel
	_ = json.NewDecoder(w.Body).Decode(&n)
	if n.Title != "春天的故事" || len(n.Chapters) != 2 {
		t.Errorf("novel = %+v", n)
	}

	w = do(t, router, http.MethodPost, "/api/parse", ParseRequest{Filename: "x.txt", Content: textBook})
	if w.Code != http.StatusOK {
		t.Errorf("by filename = %d", w.Code)
	}

	list, _ := svc.List(t.Context())
	if len(list) != 0 {
		t.Error("parse must not save")
	}

	if w := do(t, router, http.MethodPost, "/api/parse", ParseRequest{Content: textBook}); w.Code != http.StatusBadRequest {
		t.Errorf("no format = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/parse", ParseRequest{Format: "pdf", Content: textBook}); w.Code != http.StatusBadRequest {
		t.Errorf("bad format = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/parse", ParseRequest{Filename: "x.doc", Content: textBook}); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("bad extension = %d, want 415", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/parse", ParseRequest{Format: "md", Content: "# 标题"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("no chapters = %d, want 422", w.Code)
	}
}

func TestRenderEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/api/render", RenderRequest{Content: "**粗** <b>"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp RenderResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if !strings.Contains(resp.HTML, "<strong>粗</strong>") || strings.Contains(resp.HTML, "<b>") {
		t.Errorf("html = %q", resp.HTML)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	novel := importNovel(t, router, "a.txt", textBook)

	w := do(t, router, http.MethodGet, "/api/search?q=%E4%B8%8A%E6%B5%B7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Results) != 1 || resp.Results[0].NovelID != novel.ID || resp.Results[0].ChapterIndex != 1 {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/api/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	importNovel(t, router, "a.txt", textBook)

	w := do(t, router, http.MethodGet, "/api/stats", nil)
	var stats StatsResponse
	_ = json.NewDecoder(w.Body).Decode(&stats)
	if stats.Novels != 1 || stats.Bytes <= 0 || !strings.HasSuffix(stats.Size, " MB") {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/api/novels", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/api/novels", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/api/novels", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_UploadRoutesOpen(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/articles", nil); w.Code != http.StatusOK {
		t.Errorf("articles = %d, want 200", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/api/novels", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	_, router, _ := testEnvWithUploads(t, "secret123", broker)

	if w := do(t, router, http.MethodGet, "/api/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed events = %d, want 401", w.Code)
	}
}

func TestUploadAndServeFile(t *testing.T) {
	_, router, uploadDir := testEnvWithUploads(t, "", nil)

	w := uploadFile(t, router, "/upload", "notes.txt", []byte("hello"))
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if resp.FileID == 0 || !strings.HasPrefix(resp.FilePath, "/uploads/") || !strings.HasSuffix(resp.FilePath, "-notes.txt") {
		t.Fatalf("resp = %+v", resp)
	}
	if _, err := os.Stat(filepath.Join(uploadDir, strings.TrimPrefix(resp.FilePath, "/uploads/"))); err != nil {
		t.Errorf("stored file: %v", err)
	}

	w = do(t, router, http.MethodGet, resp.FilePath, nil)
	if w.Code != http.StatusOK || w.Body.String() != "hello" {
		t.Errorf("serve = %d %q", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/uploads/", nil); w.Code != http.StatusNotFound {
		t.Errorf("directory listing = %d, want 404", w.Code)
	}
}

func TestServeUploads_ActiveContentDownloaded(t *testing.T) {
	_, router, _ := testEnvWithUploads(t, "", nil)

	var page UploadResponse
	w := uploadFile(t, router, "/upload", "page.html", []byte("<script>alert(1)</script>"))
	_ = json.NewDecoder(w.Body).Decode(&page)
	var img ImageUploadResponse
	w = uploadFile(t, router, "/upload-image", "cover.png", pngBytes(t))
	_ = json.NewDecoder(w.Body).Decode(&img)

	w = do(t, router, http.MethodGet, page.FilePath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("serve html = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment" {
		t.Errorf("html Content-Disposition = %q, want attachment", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("html X-Content-Type-Options = %q", got)
	}

	w = do(t, router, http.MethodGet, img.FilePath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("serve image = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "" {
		t.Errorf("image Content-Disposition = %q, want inline", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("image X-Content-Type-Options = %q", got)
	}
}

func TestArticles(t *testing.T) {
	_, router := testEnv(t, "")

	w := uploadFile(t, router, "/upload", "draft.md", []byte("ignored"))
	var up UploadResponse
	_ = json.NewDecoder(w.Body).Decode(&up)
	id := strconv.FormatInt(up.FileID, 10)

	w = do(t, router, http.MethodGet, "/articles", nil)
	var items []models.ArticleListItem
	_ = json.NewDecoder(w.Body).Decode(&items)
	if len(items) != 1 || items[0].Title != "draft.md" || items[0].ImagePath == nil || *items[0].ImagePath != up.FilePath {
		t.Fatalf("items = %+v", items)
	}

	w = do(t, router, http.MethodPost, "/article/"+id, ArticleUpdateRequest{Title: "草稿", Content: "# 标题\n\n正文"})
	var changes ChangesResponse
	_ = json.NewDecoder(w.Body).Decode(&changes)
	if w.Code != http.StatusOK || changes.Changes != 1 || changes.Message != "文章更新成功" {
		t.Errorf("update = %d %+v", w.Code, changes)
	}

	w = do(t, router, http.MethodGet, "/article/"+id, nil)
	var a models.Article
	_ = json.NewDecoder(w.Body).Decode(&a)
	if a.Title != "草稿" || a.Content != "# 标题\n\n正文" {
		t.Errorf("article = %+v", a)
	}

	w = do(t, router, http.MethodGet, "/article/"+id+"/html", nil)
	if !strings.Contains(w.Body.String(), "<h1>标题</h1>") {
		t.Errorf("html = %q", w.Body.String())
	}

	w = do(t, router, http.MethodDelete, "/article/"+id, nil)
	_ = json.NewDecoder(w.Body).Decode(&changes)
	if changes.Changes != 1 || changes.Message != "文章删除成功" {
		t.Errorf("delete = %+v", changes)
	}
	if w := do(t, router, http.MethodGet, "/article/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted article = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/article/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d, want 400", w.Code)
	}
}

func TestUploadImage(t *testing.T) {
	_, router, uploadDir := testEnvWithUploads(t, "", nil)

	w := uploadFile(t, router, "/upload-image", "cover.jpg", pngBytes(t))
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ImageUploadResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if !strings.HasSuffix(resp.FilePath, "-cover.png") {
		t.Errorf("file path = %q", resp.FilePath)
	}

	if w := uploadFile(t, router, "/upload-image", "a.png", []byte("not an image")); w.Code != http.StatusBadRequest {
		t.Errorf("non-image = %d, want 400", w.Code)
	}
	big := append(pngBytes(t), bytes.Repeat([]byte{0}, 2<<10)...)
	if w := uploadFile(t, router, "/upload-image", "big.png", big); w.Code != http.StatusBadRequest {
		t.Errorf("too large = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/delete-image", DeleteImageRequest{ImagePath: resp.FilePath})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("delete = %d %s", w.Code, w.Body.String())
	}
	name := strings.TrimPrefix(resp.FilePath, "/uploads/")
	if _, err := os.Stat(filepath.Join(uploadDir, name)); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
	if w := do(t, router, http.MethodDelete, "/delete-image", DeleteImageRequest{ImagePath: resp.FilePath}); w.Code != http.StatusOK {
		t.Errorf("delete missing file = %d, want 200", w.Code)
	}
}

func TestDeleteImage_MissingPath(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodDelete, "/delete-image", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/delete-image", DeleteImageRequest{ImagePath: "/uploads/../x"}); w.Code != http.StatusBadRequest {
		t.Errorf("traversal = %d, want 400", w.Code)
	}
}
