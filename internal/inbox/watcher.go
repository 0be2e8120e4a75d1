package inbox

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/shujia/internal/storage"
)

// DefaultDebounce is how long a file must stay quiet before it is imported.
const DefaultDebounce = 300 * time.Millisecond

// Watch starts an fsnotify watcher on the inbox root and imports manuscripts
// as they are created or written, until ctx is cancelled. Bursts of events
// for one file are collapsed: the import runs once the file has been quiet
// for debounce.
//
// New directories created at runtime are added to the watch list and any
// manuscripts already inside them are imported.
func Watch(ctx context.Context, imp Importer, store storage.Provider, root string, debounce time.Duration, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("inbox watcher: started", slog.String("root", root))

	deb := newDebouncer(ctx.Done(), debounce)

	for {
		select {
		case <-ctx.Done():
			deb.stop()
			logger.Info("inbox watcher: stopped")
			return nil

		case rel := <-deb.due:
			importIfChanged(ctx, imp, store, rel, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("inbox watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("inbox watcher: watching new dir", slog.String("path", ev.Name))
					for _, rel := range manuscriptsIn(root, ev.Name) {
						deb.schedule(rel)
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			rel, ok := relManuscript(root, ev.Name)
			if !ok {
				continue
			}
			deb.schedule(rel)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// debouncer delivers a path on due once it has gone quiet for delay. Each
// schedule call replaces the path's timer; a timer that was replaced after
// it fired delivers nothing.
type debouncer struct {
	done  <-chan struct{}
	delay time.Duration
	due   chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(done <-chan struct{}, delay time.Duration) *debouncer {
	return &debouncer{
		done:   done,
		delay:  delay,
		due:    make(chan string, 64),
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) schedule(rel string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.timers[rel]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.timers[rel] == t
		if current {
			delete(d.timers, rel)
		}
		d.mu.Unlock()
		if !current {
			return
		}
		select {
		case d.due <- rel:
		case <-d.done:
		}
	})
	d.timers[rel] = t
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for rel, t := range d.timers {
		t.Stop()
		delete(d.timers, rel)
	}
}

// relManuscript returns the slash path of abs relative to root when abs is
// a visible manuscript file.
func relManuscript(root, abs string) (string, bool) {
	if strings.HasPrefix(filepath.Base(abs), ".") || !storage.IsManuscript(abs) {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// manuscriptsIn lists manuscripts below dir as paths relative to root.
func manuscriptsIn(root, dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := relManuscript(root, path); ok {
			out = append(out, rel)
		}
		return nil
	})
	return out
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
