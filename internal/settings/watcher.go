package settings

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"deckhand/internal/events"
	"deckhand/pkg/logging"
)

// ReloadEvent signals that the settings file changed on disk.
type ReloadEvent struct {
	Path string
	At   time.Time
}

// Watcher observes a settings file for external changes.
//
// It watches the file's parent directory, since editors and the FileStore
// itself replace the file by rename. Rapid successive events are debounced
// into a single ReloadEvent.
type Watcher struct {
	mu sync.Mutex

	path     string
	debounce time.Duration

	watcher *fsnotify.Watcher
	pending *time.Timer
	stopCh  chan struct{}
	running bool

	reloads events.Emitter[ReloadEvent]
}

// NewWatcher creates a watcher for the settings file at path.
func NewWatcher(path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
	}
}

// OnReload registers fn for ReloadEvents. The returned function
// unsubscribes.
func (w *Watcher) OnReload(fn func(ReloadEvent)) (unsubscribe func()) {
	return w.reloads.Subscribe(fn)
}

// Start begins watching. It returns once the underlying watch is
// established; events are delivered until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true
	stopCh := w.stopCh
	w.mu.Unlock()

	go w.processEvents(ctx, watcher, stopCh)

	logging.Info("SettingsWatcher", "Watching %s for external changes", w.path)
	return nil
}

// Stop ends watching and cancels any pending debounced event.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			logging.Error("SettingsWatcher", err, "Error closing settings watcher")
		}
		w.watcher = nil
	}
	return nil
}

// processEvents takes the fsnotify watcher and stop channel as arguments so
// it never touches fields Stop may swap out underneath it.
func (w *Watcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher, stopCh chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("SettingsWatcher", err, "Settings watcher error")
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		ev := ReloadEvent{Path: w.path, At: time.Now()}
		logging.Debug("SettingsWatcher", "Settings file changed: %s", w.path)
		w.reloads.Publish(ev)
	})
}
