package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch loads the layout file at path, then loads it again on every change
// until ctx is done. Each load result is handed to onChange.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start layout watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so the directory is watched
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}

	logger := log.WithFields(log.Fields{"Module": "LayoutWatcher", "path": target})
	logger.Debug("Start watching layout file")
	onChange(Load(target))

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Stop watching layout file")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.WithField("event", event).Debug("Layout file changed")
			onChange(Load(target))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("layout watcher failed: %w", err)
		}
	}
}
