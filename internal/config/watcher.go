package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"quartermaster/internal/logging"
)

// Watcher reloads the logging configuration when the config file changes on
// disk, so debug logging can be toggled without restarting a session.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchLogging starts watching the workspace config file. It returns a no-op
// watcher (nil inner) when the .quartermaster directory does not exist yet.
func WatchLogging(workspace string) (*Watcher, error) {
	dir := filepath.Dir(Path(workspace))

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		// Directory missing is fine: nothing to watch until init.
		return &Watcher{done: make(chan struct{})}, nil
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	go w.loop(Path(workspace))
	return w, nil
}

func (w *Watcher) loop(configPath string) {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != configPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := logging.ReloadConfig(); err != nil {
				logging.Boot("config reload failed: %v", err)
				continue
			}
			logging.BootDebug("logging config reloaded from %s", configPath)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Boot("config watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
