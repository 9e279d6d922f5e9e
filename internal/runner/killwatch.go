package runner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// killSignalDir and killSignalFile locate the external kill file a caller
// can create to cancel a running loop from outside the process, per
// spec.md §4.5's cancellation step.
const (
	killSignalDir  = "signals"
	killSignalFile = "kill"
)

// WatchKillFile cancels cancel as soon as <projectDir>/.autonomous/signals/kill
// appears. It falls back to a no-op if the watcher can't be set up (e.g. the
// directory can't be created) — OS signal handling is still the primary
// cancellation path, this is a secondary, external-trigger one.
func WatchKillFile(ctx context.Context, projectDir string, cancel context.CancelFunc) {
	dir := filepath.Join(projectDir, sessionLogDir, killSignalDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	killPath := filepath.Join(dir, killSignalFile)
	if _, err := os.Stat(killPath); err == nil {
		cancel()
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) == killSignalFile &&
					(event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
					cancel()
					return
				}
			case <-watcher.Errors:
				// ignore, keep watching; OS signals remain the primary path
			}
		}
	}()
}
