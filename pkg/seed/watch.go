package seed

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch applies the file at path once, then again on every write until ctx
// is done. Load failures are logged and do not stop the watch; onApply, if
// set, is called after every attempt.
func (l *Loader) Watch(ctx context.Context, path string, onApply func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", path, err)
	}

	reload := func() {
		result, err := l.LoadFromFile(ctx, path)
		if err != nil {
			l.logger.Error("failed to apply seed", "path", path, "error", err)
		}
		if onApply != nil {
			onApply(result, err)
		}
	}

	l.logger.Info("watching seed file", "path", path)
	reload()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				l.logger.Debug("seed file modified", "path", path, "op", event.Op.String())
				reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
