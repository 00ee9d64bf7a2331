package preview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/studysite/internal/config"
	ferrors "git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/site"
)

// watcher follows the content directories of a site. Events inside the
// output directory are ignored.
type watcher struct {
	fs     *fsnotify.Watcher
	ignore []string
}

func newWatcher(s *config.Site, outputDir string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &watcher{fs: fw, ignore: []string{
		outputDir,
		outputDir + ".prev",
		filepath.Join(filepath.Dir(outputDir), site.ReportFile),
	}}

	dirs := []string{
		s.Resolve(s.Docs.Path),
		s.Resolve(s.StaticDir),
		filepath.Dir(s.Resolve(s.Docs.SidebarPath)),
	}
	if s.Blog.Enabled {
		dirs = append(dirs, s.Resolve(s.Blog.Path))
	}
	if s.Theme.CustomCSS != "" {
		dirs = append(dirs, filepath.Dir(s.Resolve(s.Theme.CustomCSS)))
	}
	for _, d := range dirs {
		if st, err := os.Stat(d); err != nil || !st.IsDir() {
			continue
		}
		w.addRecursive(d)
	}
	return w, nil
}

func (w *watcher) Events() <-chan fsnotify.Event { return w.fs.Events }
func (w *watcher) Errors() <-chan error          { return w.fs.Errors }
func (w *watcher) Close() error                  { return w.fs.Close() }

// handle reports whether ev should trigger a rebuild. New directories are
// added to the watch list.
func (w *watcher) handle(ev fsnotify.Event) bool {
	if shouldIgnoreEvent(ev.Name) || w.ignored(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addRecursive(ev.Name)
		}
	}
	slog.Debug("File change detected", "path", ev.Name, "op", ev.Op.String())
	return true
}

func (w *watcher) ignored(p string) bool {
	for _, dir := range w.ignore {
		if p == dir || strings.HasPrefix(p, dir+string(filepath.Separator)) {
			return true
		}
	}
	return strings.Contains(filepath.Base(p), ".staging-")
}

func (w *watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) || (path != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			slog.Warn("watch add failed", "dir", path, "error", err)
		}
		return nil
	})
}

// shouldIgnoreEvent skips editor swap files, hidden files and backups.
func shouldIgnoreEvent(name string) bool {
	base := filepath.Base(name)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"), strings.HasSuffix(base, ".tmp"):
		return true
	}
	return false
}

// rebuildWorker coalesces change notifications into debounced rebuilds.
// At most one rebuild runs at a time; a change during a rebuild schedules
// exactly one more.
type rebuildWorker struct {
	delay   time.Duration
	rebuild func()

	mu    sync.Mutex
	timer *time.Timer
	req   chan struct{}
}

func newRebuildWorker(delay time.Duration, rebuild func()) *rebuildWorker {
	return &rebuildWorker{delay: delay, rebuild: rebuild, req: make(chan struct{}, 1)}
}

func (r *rebuildWorker) trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, func() {
		select {
		case r.req <- struct{}{}:
		default:
		}
	})
}

func (r *rebuildWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			if r.timer != nil {
				r.timer.Stop()
			}
			r.mu.Unlock()
			return
		case <-r.req:
			slog.Info("Change detected; rebuilding site")
			r.rebuild()
		}
	}
}
