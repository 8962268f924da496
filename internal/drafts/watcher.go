package drafts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"applytrack/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a draft store when its file is changed by another process.
// Bursts of events are debounced into a single reload.
type Watcher struct {
	mu sync.RWMutex

	store       *Store
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onReload func()
	logger   *errors.Logger

	running bool
}

// NewWatcher creates a watcher for store. onReload, if set, runs after every
// successful reload.
func NewWatcher(store *Store, debounceDelay time.Duration, onReload func(), logger *errors.Logger) *Watcher {
	if debounceDelay <= 0 {
		debounceDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	return &Watcher{
		store:         store,
		debounceDelay: debounceDelay,
		reloadChan:    make(chan struct{}, 1), // Buffered to prevent blocking
		onReload:      onReload,
		logger:        logger,
	}
}

// Start begins watching the drafts file
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("drafts watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory: the file may not exist yet and is replaced by rename on every save.
	dir := filepath.Dir(w.store.Path())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to create drafts directory %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	// Each run gets its own stop channel, so the watcher can be restarted after Stop
	w.fsWatcher = watcher
	w.stopChan = make(chan struct{})
	w.lastModTime = w.modTime()
	w.running = true
	go w.watchLoop(watcher, w.stopChan)

	w.logger.Info("Drafts file watcher started",
		"file", w.store.Path(),
		"debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.running = false

	if err := w.fsWatcher.Close(); err != nil {
		w.logger.LogError(err, "Failed to close drafts file watcher")
		return err
	}

	w.logger.Info("Drafts file watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Watcher) watchLoop(fsWatcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Drafts file watcher error")

		case <-w.reloadChan:
			if w.hasFileChanged() {
				w.reload()
			}

		case <-stop:
			return
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Reload(); err != nil {
		w.logger.LogError(err, "Failed to reload drafts file")
		return
	}
	w.logger.Info("Drafts file changed, reloaded", "file", w.store.Path())
	if w.onReload != nil {
		w.onReload()
	}
}

// shouldProcessEvent keeps write, create, rename and remove events for the drafts file
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.store.Path()) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// hasFileChanged compares the file's modification time with the last one seen.
// A removed file counts as a change once.
func (w *Watcher) hasFileChanged() bool {
	current := w.modTime()

	w.mu.Lock()
	defer w.mu.Unlock()

	if current.Equal(w.lastModTime) {
		return false
	}
	w.lastModTime = current
	return true
}

// modTime returns the zero time when the file does not exist
func (w *Watcher) modTime() time.Time {
	stat, err := os.Stat(w.store.Path())
	if err != nil {
		return time.Time{}
	}
	return stat.ModTime()
}

// scheduleReload schedules a debounced reload
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
			// Channel is full, reload already scheduled
		}
	})
}
