package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/streamforge/reencoder/internal/log"
)

// Watcher hot-reloads an Options preset file, publishing each
// successfully parsed revision behind an atomic pointer. It never
// touches the one-shot Toolchain latch: only the preset is reloadable.
type Watcher struct {
	path    string
	current atomic.Pointer[Options]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher loads path once synchronously, then starts watching it
// for writes, reloading and publishing a new Options on each change
// that parses successfully. A change that fails to parse is logged and
// ignored, leaving the previous snapshot in place.
func NewWatcher(path string) (*Watcher, error) {
	initial, err := LoadYAML(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{path: path, watcher: fw, done: make(chan struct{})}
	w.current.Store(initial)

	go w.loop()
	return w, nil
}

// Current returns the most recently published Options snapshot.
func (w *Watcher) Current() *Options {
	return w.current.Load()
}

// Close stops the watch loop and releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	logger := log.WithComponent("config.watcher")
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			next, err := LoadYAML(w.path)
			if err != nil {
				logger.Warn().Err(err).Str("path", w.path).Msg("preset reload failed, keeping previous snapshot")
				continue
			}
			w.current.Store(next)
			logger.Info().Str("path", w.path).Msg("preset reloaded")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("fsnotify watch error")
		}
	}
}
