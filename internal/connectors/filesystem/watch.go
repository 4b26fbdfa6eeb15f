package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// Watch blocks until ctx is cancelled, calling notify whenever a layer
// file is created, written or renamed into the directory. Removals are
// ignored because stored layers are never deleted.
func (s *Source) Watch(ctx context.Context, notify func(domain.LayerFile)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	logger.Debug("filesystem: watching %s", s.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if file, ok := s.handleFsEvent(event); ok {
				notify(file)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("filesystem: watch error: %v", err)
		}
	}
}

// handleFsEvent maps a filesystem event to the layer file it concerns.
func (s *Source) handleFsEvent(event fsnotify.Event) (domain.LayerFile, bool) {
	// A rename reports the old name; the new name arrives as Create.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return domain.LayerFile{}, false
	}
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return domain.LayerFile{}, false
	}
	id, ok := domain.ParseLayerFileName(name)
	if !ok {
		return domain.LayerFile{}, false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return domain.LayerFile{}, false
	}
	return layerFile(id, event.Name, info), true
}
