package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ConfigWatcher = (*Watcher)(nil)

// settleDelay lets editors finish an atomic write before the file is re-read.
const settleDelay = 100 * time.Millisecond

// Watcher reloads a ConfigStore when its file is edited outside the process.
// It watches the directory rather than the file so atomic renames are seen.
type Watcher struct {
	store *ConfigStore
	delay time.Duration
}

// NewWatcher creates a watcher for store.
func NewWatcher(store *ConfigStore) *Watcher {
	return &Watcher{store: store, delay: settleDelay}
}

// Watch blocks until ctx is cancelled, calling onChange after each reload.
// Writes made by the store itself do not trigger onChange.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			logger.Warn("close config watcher: %v", err)
		}
	}()

	path := w.store.Path()
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	logger.Debug("watching config file %s", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.reload(ctx, path) {
				onChange()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}

// reload re-reads the store after the settle delay. It returns false when the
// file is gone, unchanged from the store's own write, or fails to parse.
func (w *Watcher) reload(ctx context.Context, path string) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(w.delay):
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("read config %s: %v", path, err)
		}
		return false
	}
	if w.store.ownWrite(content) {
		return false
	}
	if err := w.store.Load(); err != nil {
		logger.Warn("reload config %s: %v", path, err)
		return false
	}
	logger.Info("config reloaded from %s", path)
	return true
}
