// Package inbox imports manuscripts dropped into a watched directory.
//
// Files are imported by their slash-separated path relative to the inbox
// root. A file is skipped when the library already holds an import of the
// same path with the same checksum. Removing a file from the inbox leaves
// the imported novel in place.
package inbox

import (
	"context"
	"log/slog"

	"github.com/starford/shujia/internal/models"
	"github.com/starford/shujia/internal/storage"
)

// Importer is the part of the library service the inbox drives. Library
// events are emitted by the importer itself.
type Importer interface {
	Import(ctx context.Context, name string, data []byte) (*models.Novel, bool, error)
	ImportedChecksums(ctx context.Context) (map[string]string, error)
}

// Sync walks the inbox and imports every new or changed manuscript. It
// returns the number of manuscripts imported. Files that fail to read or
// parse are logged and skipped.
func Sync(ctx context.Context, imp Importer, store storage.Provider, logger *slog.Logger) (int, error) {
	metas, err := store.List("")
	if err != nil {
		return 0, err
	}

	checksums, err := imp.ImportedChecksums(ctx)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, m := range metas {
		if checksums[m.Path] == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("inbox sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		novel, _, err := imp.Import(ctx, m.Path, data)
		if err != nil {
			logger.Warn("inbox sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		imported++
		logger.Debug("inbox sync: imported", slog.String("path", m.Path), slog.String("id", novel.ID))
	}
	return imported, nil
}

// importIfChanged imports one manuscript unless its current content was
// already imported under the same path.
func importIfChanged(ctx context.Context, imp Importer, store storage.Provider, rel string, logger *slog.Logger) {
	data, err := store.Read(rel)
	if err != nil {
		logger.Warn("inbox: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	checksums, err := imp.ImportedChecksums(ctx)
	if err != nil {
		logger.Warn("inbox: checksum lookup failed", slog.String("error", err.Error()))
		return
	}
	if checksums[rel] == storage.Checksum(data) {
		logger.Debug("inbox: unchanged", slog.String("path", rel))
		return
	}
	novel, replaced, err := imp.Import(ctx, rel, data)
	if err != nil {
		logger.Warn("inbox: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Info("inbox: imported",
		slog.String("path", rel),
		slog.String("id", novel.ID),
		slog.String("title", novel.Title),
		slog.Bool("replaced", replaced))
}
