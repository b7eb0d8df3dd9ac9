package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must go without writes before it is
// considered complete and uploaded.
const DefaultSettle = 500 * time.Millisecond

// Watcher uploads files dropped into a directory. Create and write events
// are debounced per file so partially-written bundles are not uploaded
// mid-copy.
type Watcher struct {
	Bulk   *Bulk
	Settle time.Duration
	Logger *slog.Logger
}

// Run watches dir until ctx is canceled. Per-file upload failures are
// logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching for new files", "dir", dir)

	deb := newDebouncer(settle)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			path := event.Name
			if strings.HasPrefix(filepath.Base(path), ".") {
				continue
			}
			deb.schedule(path, func() {
				info, err := os.Stat(path)
				if err != nil || !info.Mode().IsRegular() {
					return
				}
				res := w.Bulk.one(ctx, logger, path)
				if res.Outcome == Failed {
					logger.Error("watch ingest failed", "path", path, "error", res.Err)
				}
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// debouncer runs a callback once a path has been quiet for the settle
// window; repeated events reset the timer.
type debouncer struct {
	mu      sync.Mutex
	settle  time.Duration
	pending map[string]*time.Timer
}

func newDebouncer(settle time.Duration) *debouncer {
	return &debouncer{settle: settle, pending: make(map[string]*time.Timer)}
}

func (d *debouncer) schedule(path string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.pending[path]; ok {
		t.Stop()
	}
	d.pending[path] = time.AfterFunc(d.settle, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()
		fn()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.pending {
		t.Stop()
		delete(d.pending, path)
	}
}
