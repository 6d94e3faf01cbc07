package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the mapping file whenever it changes and hands each freshly
// loaded table to onReload. Events are debounced since editors and atomic
// renames fire several in a row. Blocks until ctx is done.
func Watch(ctx context.Context, log *slog.Logger, path string, onReload func(*Mapping)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic-rename saves replace the file node.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	var timer *time.Timer
	debounce := 300 * time.Millisecond
	reload := func() {
		m, err := Load(path)
		if err != nil {
			log.Error("mapping reload failed", "path", path, "error", err)
			return
		}
		log.Info("mapping reloaded", "path", path, "sections", len(m.Sections))
		onReload(m)
	}

	base := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-watcher.Events:
			if filepath.Base(ev.Name) != base {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
		case err := <-watcher.Errors:
			log.Error("mapping watch error", "error", err)
		}
	}
}
