// Package watch triggers index rebuilds when files change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roderik/claude-code-project-index/internal/discover"
)

// Watcher monitors a project tree recursively and invokes a callback after a
// debounce window with no further changes.
type Watcher struct {
	root     string
	debounce time.Duration
	rebuild  func()
	ignore   map[string]struct{} // absolute paths, e.g. the index itself
	fsw      *fsnotify.Watcher
}

// New creates a watcher over root. Paths in ignore never trigger a rebuild;
// the index output must be listed there or every rebuild schedules the next.
// rebuild runs on the watch goroutine, so it must return before further
// events are processed.
func New(root string, debounce time.Duration, ignore []string, rebuild func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ignoreSet := make(map[string]struct{}, len(ignore))
	for _, p := range ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignoreSet[abs] = struct{}{}
		}
	}
	w := &Watcher{root: root, debounce: debounce, rebuild: rebuild, ignore: ignoreSet, fsw: fsw}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes events until ctx is canceled or the event stream closes.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addRecursive(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-fire
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			w.rebuild()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			// transient watch errors are ignored
		}
	}
}

// relevant filters events down to indexable files and directory changes.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
		return false
	}
	if abs, err := filepath.Abs(ev.Name); err == nil {
		if _, skip := w.ignore[abs]; skip {
			return false
		}
	}
	name := filepath.Base(ev.Name)
	if discover.Skipped(name) {
		return false
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		return true
	}
	ext := filepath.Ext(name)
	return discover.Code(ext) || discover.Markdown(ext)
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && discover.Skipped(d.Name()) {
			return filepath.SkipDir
		}
		w.fsw.Add(path)
		return nil
	})
}
