package source

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"prgrip/internal/eventbus"
	"prgrip/internal/lifecycle"
	"prgrip/internal/log"
)

const watchDebounce = 150 * time.Millisecond

// Watch publishes a forced RefreshRequestedEvent for the loader's last
// query whenever the file at path is written. Watching stops when scope is disposed.
// The parent directory is watched so editors that replace the file on
// save are handled.
func Watch(path string, bus eventbus.EventBus, scope *lifecycle.Scope) error {
	if scope == nil {
		return lifecycle.ErrNilScope
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if err := scope.Register(func() { _ = w.Close() }); err != nil {
		_ = w.Close()
		return err
	}

	go watchLoop(w.Events, w.Errors, abs, bus, scope.Done())
	return nil
}

// watchLoop turns write events for abs into refresh requests and watcher
// errors into ErrorEvents until done is closed
func watchLoop(events <-chan fsnotify.Event, errs <-chan error, abs string, bus eventbus.EventBus, done <-chan struct{}) {
	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(watchDebounce)
		case <-pending:
			pending = nil
			log.Info(log.CatSource, "pull request file changed", "path", abs)
			bus.Publish(eventbus.RefreshRequestedEvent{UseLast: true, Force: true})
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.ErrorErr(log.CatSource, "watcher error", err, "path", abs)
			bus.Publish(eventbus.ErrorEvent{Message: fmt.Sprintf("Watching %s failed: %v", filepath.Base(abs), err), Err: err})
		case <-done:
			return
		}
	}
}
