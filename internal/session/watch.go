// ABOUTME: Watches the session file for changes made by other processes
// ABOUTME: Reloads the manager so a CLI logout signs the TUI out too

package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads m whenever the store's session file is written or removed.
// It returns once the watcher is registered; watching stops when ctx is done.
func Watch(ctx context.Context, m *Manager, fs *FileStore) error {
	if err := os.MkdirAll(fs.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: the file is replaced by rename on every save
	if err := w.Add(fs.Dir()); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", fs.Dir(), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != FileName {
					continue
				}
				if !ev.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
					continue
				}
				if err := m.Reload(); err != nil {
					slog.Warn("session reload failed", "error", err)
				} else {
					slog.Debug("session file changed", "op", ev.Op.String(), "state", m.State().String())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("session watcher error", "error", err)
			}
		}
	}()

	return nil
}
