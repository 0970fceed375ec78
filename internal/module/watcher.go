package module

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/fsutil"
)

// Watch starts a filesystem watcher that reloads a module when its files
// change. Editors and git write in bursts, so events are debounced per
// module before the reload fires. Watch returns once the watcher is
// installed; the loop stops when ctx is canceled.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating module watcher: %w", err)
	}

	// fsnotify is not recursive; watch every directory of the tree. New
	// directories join the watch from their create events.
	dirs, err := watchDirs(l.root)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("walking modules root %s: %w", l.root, err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	ctxlog.FromContext(ctx).Info("Watching modules for changes.", "path", l.root, "debounce", l.debounce)
	go l.watchLoop(ctx, watcher)
	return nil
}

func watchDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if os.IsNotExist(err) {
		// No modules root, nothing to watch; the loop still runs so the
		// caller's lifecycle stays uniform.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

func (l *Loader) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	logger := ctxlog.FromContext(ctx)

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Newly created directories join the watch so files landing
			// inside them are seen.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("Failed to watch new directory.", "path", event.Name, "error", err)
					}
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if fsutil.Excluded(filepath.Base(event.Name)) {
				continue
			}
			name, ok := l.moduleFor(event.Name)
			if !ok {
				continue
			}

			logger.Debug("Module file changed.", "module", name, "file", event.Name, "op", event.Op.String())
			if t, exists := timers[name]; exists {
				t.Reset(l.debounce)
				continue
			}
			timers[name] = time.AfterFunc(l.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				if err := l.Reload(ctx, name); err != nil {
					logger.Error("Watcher reload failed; previous routes stay live.", "module", name, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("Module watcher error.", "error", err)
		}
	}
}

// moduleFor maps a changed path to the loaded module that owns it.
// Changes in unloaded or unknown directories are ignored: loading is an
// operator decision, not a filesystem side effect.
func (l *Loader) moduleFor(path string) (string, bool) {
	rel, err := filepath.Rel(l.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	name, _, _ := strings.Cut(rel, string(filepath.Separator))

	l.mu.RLock()
	defer l.mu.RUnlock()
	rec := l.records[name]
	if rec == nil || !rec.Loaded {
		return "", false
	}
	return name, true
}
