package scheduler

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/arangr/arangr/internal/cache"
)

// Watcher invalidates cached previews when files change on disk, so a stale
// identity never serves after a write. Events are debounced: editors often
// emit bursts of writes for one save.
type Watcher struct {
	cache        *cache.Cache
	watcher      *fsnotify.Watcher
	log          *zap.Logger
	debounceTime time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a cache-invalidation watcher rooted at the given paths.
func NewWatcher(c *cache.Cache, log *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		cache:        c,
		watcher:      fsWatcher,
		log:          log,
		debounceTime: 300 * time.Millisecond,
		pending:      make(map[string]time.Time),
	}, nil
}

// Watch adds a directory tree to the watch set.
func (w *Watcher) Watch(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == "node_modules" {
				return filepath.SkipDir
			}
			return w.watcher.Add(p)
		}
		return nil
	})
}

// Run processes events until done is closed.
func (w *Watcher) Run(done <-chan struct{}) {
	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()
	defer w.watcher.Close()

	for {
		select {
		case <-done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories join the watch set.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Watch(event.Name); err != nil {
				w.log.Warn("watching new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flushPending invalidates paths whose events have settled.
func (w *Watcher) flushPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounceTime {
			ready = append(ready, path)
		}
	}
	for _, p := range ready {
		delete(w.pending, p)
	}
	w.mu.Unlock()

	for _, p := range ready {
		w.cache.InvalidatePath(p)
		w.log.Debug("invalidated cached preview", zap.String("path", p))
	}
}
