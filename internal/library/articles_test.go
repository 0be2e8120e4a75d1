package library

import (
	"errors"
	"testing"

	"github.com/starford/shujia/internal/apperr"
)

func TestArticles_CRUD(t *testing.T) {
	db := testDB(t)
	img := "/uploads/1-cover.png"
	id, err := db.CreateArticle("cover.png", "", &img)
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	list, err := db.ListArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != id || list[0].ImagePath == nil || *list[0].ImagePath != img {
		t.Fatalf("list = %+v", list)
	}
	if list[0].CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	changes, err := db.UpdateArticle(id, "新标题", "# 正文")
	if err != nil || changes != 1 {
		t.Fatalf("UpdateArticle = %d, %v", changes, err)
	}
	a, err := db.GetArticle(id)
	if err != nil {
		t.Fatal(err)
	}
	if a.Title != "新标题" || a.Content != "# 正文" {
		t.Errorf("article = %+v", a)
	}

	changes, err = db.DeleteArticle(id)
	if err != nil || changes != 1 {
		t.Fatalf("DeleteArticle = %d, %v", changes, err)
	}
	if _, err := db.GetArticle(id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestArticles_UpdateMissingChangesNothing(t *testing.T) {
	db := testDB(t)
	changes, err := db.UpdateArticle(42, "t", "c")
	if err != nil {
		t.Fatal(err)
	}
	if changes != 0 {
		t.Errorf("changes = %d", changes)
	}
}

func TestArticles_ClearImagePath(t *testing.T) {
	db := testDB(t)
	img := "/uploads/x.png"
	other := "/uploads/y.png"
	a, _ := db.CreateArticle("a", "", &img)
	b, _ := db.CreateArticle("b", "", &img)
	c, _ := db.CreateArticle("c", "", &other)

	n, err := db.ClearImagePath(img)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("cleared %d rows, want 2", n)
	}
	for _, id := range []int64{a, b} {
		art, _ := db.GetArticle(id)
		if art.ImagePath != nil {
			t.Errorf("article %d still has image %q", id, *art.ImagePath)
		}
	}
	art, _ := db.GetArticle(c)
	if art.ImagePath == nil {
		t.Error("unrelated article lost its image")
	}
}
