// Package watcher reloads grounding resources when their files change on disk.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// Watcher watches resource files and directories and calls onChange once
// per burst of events.
type Watcher struct {
	files    map[string]struct{} // watched files, cleaned absolute paths
	dirs     []string            // watched trees, cleaned absolute paths
	onChange func(ctx context.Context) error
	debounce time.Duration
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher over the given files and directory trees. Empty
// paths are ignored. onChange runs on its own goroutine after the debounce.
func New(files, dirs []string, onChange func(ctx context.Context) error, opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]struct{}),
		onChange: onChange,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		w.files[absClean(f)] = struct{}{}
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		w.dirs = append(w.dirs, absClean(d))
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// Files are watched through their parent directory so that atomic
// replacement by rename is seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fw
	for f := range w.files {
		dir := filepath.Dir(f)
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			w.watcher = nil
			return err
		}
	}
	for _, d := range w.dirs {
		if err := w.addTree(d); err != nil {
			_ = fw.Close()
			w.watcher = nil
			return err
		}
	}
	w.started = true
	w.logger.Debug("watcher starting",
		zap.Int("files", len(w.files)),
		zap.Strings("dirs", w.dirs),
		zap.Duration("debounce", w.debounce))
	go w.run(ctx)
	return nil
}

// addTree watches d and every directory below it. A missing tree is skipped;
// its parent is watched instead so that its creation is noticed.
func (w *Watcher) addTree(d string) error {
	if _, err := os.Stat(d); os.IsNotExist(err) {
		parent := filepath.Dir(d)
		if _, perr := os.Stat(parent); perr != nil {
			return nil
		}
		return w.watcher.Add(parent)
	}
	return filepath.WalkDir(d, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	path := filepath.Clean(ev.Name)
	if !w.relevant(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.mu.Lock()
			if w.watcher != nil {
				if err := w.addTree(path); err != nil {
					w.logger.Debug("watcher failed to add directory", zap.String("path", path), zap.Error(err))
				}
			}
			w.mu.Unlock()
		}
	}
	w.schedule(ctx)
}

// relevant reports whether path is a watched file or lies within a watched tree.
func (w *Watcher) relevant(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, d := range w.dirs {
		if path == d || inDir(d, path) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("resources changed, reloading")
		if err := w.onChange(ctx); err != nil {
			w.logger.Error("reload after change failed", zap.Error(err))
		}
	})
}

// Stop stops the watcher and drops any pending reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
