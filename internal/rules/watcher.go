package rules

import (
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smack-team/smack-go/internal/logging"
)

// ErrNoManager is returned when a watcher is created without a manager.
var ErrNoManager = errors.New("rules: no manager configured")

// DirWatcher watches a rule directory and re-applies the rules when its
// contents change. Bursts of filesystem events, as produced by editors
// and package installs, collapse into one reload per debounce window.
type DirWatcher struct {
	dir       string
	manager   *Manager
	logger    logging.Logger
	debounce  time.Duration
	fsw       *fsnotify.Watcher
	stopCh    chan struct{}
	stoppedCh chan struct{}
	mu        sync.Mutex
	running   bool
}

// WatcherConfig holds directory watcher configuration.
type WatcherConfig struct {
	// Manager whose Reload is triggered on changes. Its rule directory
	// is the watched path.
	Manager *Manager

	// Logger for watch events.
	Logger logging.Logger

	// Debounce is the quiet period after the last event before a
	// reload fires. Default: 200ms.
	Debounce time.Duration
}

// NewDirWatcher creates a watcher on the manager's rule directory.
func NewDirWatcher(cfg *WatcherConfig) (*DirWatcher, error) {
	if cfg == nil || cfg.Manager == nil {
		return nil, ErrNoManager
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(cfg.Manager.Dir()); err != nil {
		fsw.Close()
		return nil, err
	}

	return &DirWatcher{
		dir:       cfg.Manager.Dir(),
		manager:   cfg.Manager,
		logger:    logger,
		debounce:  debounce,
		fsw:       fsw,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// Start begins watching the directory.
func (w *DirWatcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.watchLoop()

	w.logger.Info("rules watcher started", "dir", w.dir)
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *DirWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.fsw.Close()
	<-w.stoppedCh

	w.logger.Info("rules watcher stopped", "dir", w.dir)
}

// watchLoop is the main event loop.
func (w *DirWatcher) watchLoop() {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("rules directory changed", "file", ev.Name, "op", ev.Op.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(w.debounce)
			debounceCh = debounceTimer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("rules watcher error", "error", err)

		case <-debounceCh:
			debounceTimer = nil
			debounceCh = nil
			if err := w.manager.Reload(); err != nil {
				// Reload already logged the failure; keep watching so
				// a later fix of the rule files recovers.
				continue
			}
		}
	}
}

// IsRunning returns true if the watcher is running.
func (w *DirWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
