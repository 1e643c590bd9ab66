package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ItsNotGoodName/wlbar/internal/core"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher flags a channel when the config file changes on disk. Bursts of
// writes within the debounce window produce one flag.
type Watcher struct {
	filePath string
	debounce time.Duration
	changedC chan struct{}
}

func NewWatcher(filePath string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		filePath: filePath,
		debounce: debounce,
		changedC: make(chan struct{}, 1),
	}
}

func (*Watcher) String() string {
	return "config.Watcher"
}

// Changed receives a value after the file settles.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changedC
}

func (w *Watcher) Serve(ctx context.Context) error {
	log := slog.With("package", "config", "file", w.filePath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors replace the file instead of writing to it, so watch the directory.
	if err := watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.filePath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("Config file event", "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Config watcher error", "error", err)
		case <-timer.C:
			log.Info("Config changed")
			core.FlagChannel(w.changedC)
		}
	}
}
