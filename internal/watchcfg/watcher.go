// Package watchcfg hot-reloads a netprobecfg.Config file, the way the
// teacher's internal/config/watcher.go hot-reloads its own Config: an
// fsnotify watch on the file path, debounced, feeding a typed callback
// instead of restarting the process.
package watchcfg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shellrow/netprobe/internal/netprobecfg"
)

// ChangeCallback is invoked with the previous and newly-loaded config after
// every debounced file event. The watcher ignores a non-nil error: it does
// not stop the watch loop or the remaining callbacks, and it is not logged.
type ChangeCallback func(old, new *netprobecfg.Config) error

// Watcher reloads a defaults file on write/create events, debounced to
// absorb editors that save in multiple steps.
type Watcher struct {
	path        string
	watcher     *fsnotify.Watcher
	mu          sync.RWMutex
	current     *netprobecfg.Config
	callbacks   []ChangeCallback
	reloadDelay time.Duration
	lastReload  time.Time
}

// New creates a Watcher for path without starting it.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watchcfg: create watcher: %w", err)
	}
	return &Watcher{path: path, watcher: fsw, reloadDelay: time.Second}, nil
}

// AddCallback registers a callback invoked on every successful reload.
func (w *Watcher) AddCallback(cb ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Config returns the most recently loaded config.
func (w *Watcher) Config() *netprobecfg.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start loads the initial config, begins watching path, and runs the watch
// loop on a new goroutine until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	cfg, err := netprobecfg.Load(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	if w.path == "" {
		return nil
	}
	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("watchcfg: watch %s: %w", w.path, err)
	}
	go w.loop(ctx)
	return nil
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			now := time.Now()
			if now.Sub(w.lastReload) < w.reloadDelay {
				continue
			}
			w.lastReload = now
			w.reload()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	newCfg, err := netprobecfg.Load(w.path)
	if err != nil {
		return
	}
	w.mu.Lock()
	old := w.current
	w.current = newCfg
	callbacks := append([]ChangeCallback(nil), w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		_ = cb(old, newCfg)
	}
}
