// Package testutil provides shared test helpers for setting up storage roots
// and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/shujia/internal/library"
	"github.com/starford/shujia/internal/storage"
)

// TestDB creates a temporary SQLite library that is automatically cleaned up.
func TestDB(t *testing.T) *library.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "shujia-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := library.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary storage root with a file-system provider.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
