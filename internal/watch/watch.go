// Package watch rebuilds a site when files under its source tree change.
//
// Filesystem events are debounced: a rebuild starts once the tree has been
// quiet for the debounce interval. Rebuilds run on the watcher goroutine, so
// events arriving during a rebuild schedule exactly one more.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bookforge/go-booksite/internal/fileutil"
	"github.com/bookforge/go-booksite/internal/logfields"
)

// DefaultDebounce is the quiet period before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoRoot is returned when the watched directory does not exist.
var ErrNoRoot = errors.New("watch root is not a directory")

// RebuildFunc is called once per burst of changes.
type RebuildFunc func(ctx context.Context) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithExclude ignores events under the given directories, typically the
// output directory when it lives inside the source tree.
func WithExclude(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.exclude = append(w.exclude, abs)
			}
		}
	}
}

// Watcher watches a directory tree.
type Watcher struct {
	root     string
	debounce time.Duration
	clock    clockwork.Clock
	logger   *zap.Logger
	exclude  []string
}

// New returns a Watcher for root.
func New(root string, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		clock:    clockwork.NewRealClock(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is canceled, calling rebuild after each burst of
// changes. Rebuild errors are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	if !fileutil.DirExists(w.root) {
		return fmt.Errorf("%w: %s", ErrNoRoot, w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	add := func(dir string) { w.addRecursive(fw, dir) }
	add(w.root)
	w.logger.Info("watching", logfields.Path(w.root))

	return w.loop(ctx, fw.Events, fw.Errors, add, rebuild)
}

// loop is the event loop behind Run; it takes channels so tests can feed it
// synthetic events.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, add func(string), rebuild RebuildFunc) error {
	var timer clockwork.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) && fileutil.DirExists(ev.Name) {
				add(ev.Name)
			}
			w.logger.Debug("change detected", logfields.Path(ev.Name), zap.Stringer("op", ev.Op))
			if timer != nil {
				timer.Stop()
			}
			timer = w.clock.NewTimer(w.debounce)
			fire = timer.Chan()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			start := w.clock.Now()
			if err := rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("rebuild failed", zap.Error(err))
				continue
			}
			w.logger.Info("rebuilt", logfields.Duration(w.clock.Since(start)))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	return ev.Op != fsnotify.Chmod && !ignoredName(ev.Name) && !w.excluded(ev.Name)
}

func (w *Watcher) excluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, ex := range w.exclude {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (ignoredName(path) || w.excluded(path)) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(path), zap.Error(err))
		}
		return nil
	})
}

// ignoredName matches hidden files and editor scratch files.
func ignoredName(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
