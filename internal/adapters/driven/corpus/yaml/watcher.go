package yaml

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/campusware/advisor/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last event before
// firing a reload. Editors produce bursts of writes for a single save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches the corpus directory and invokes a callback when programme
// files change. Events are debounced so one editor save triggers one reload.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(ctx context.Context)
}

// NewWatcher creates a watcher over the given data directory. onChange runs
// on the watcher goroutine; it should do its own locking.
func NewWatcher(dir string, debounce time.Duration, onChange func(ctx context.Context)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce, onChange: onChange}
}

// Run watches until the context is cancelled. The caller typically runs this
// in its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	logger.Info("watching %s for corpus changes", w.dir)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isProgramFileEvent(event) {
				continue
			}
			logger.Debug("corpus change: %s %s", event.Op, filepath.Base(event.Name))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			logger.Info("corpus changed, reloading")
			w.onChange(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("corpus watcher: %v", err)
		}
	}
}

// isProgramFileEvent reports whether an fsnotify event concerns a programme
// YAML file. Chmod-only events are noise.
func isProgramFileEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := strings.ToLower(filepath.Base(event.Name))
	if strings.Contains(name, "content_index") {
		return false
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
