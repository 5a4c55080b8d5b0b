// Package watcher notifies the daemon when the command document changes.
package watcher

import (
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/drawrpc/drawrpc/internal/logging"
)

// DefaultDebounce coalesces the bursts of events produced by one save.
const DefaultDebounce = 100 * time.Millisecond

// Event is a debounced change to the watched file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher watches a single file. The parent directory is watched too, so a
// file replaced by rename is still noticed after its own watch is lost.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	path       string
	dir        string
	name       string
	delay      time.Duration
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	log        *logging.Logger

	debounceMu sync.Mutex
	pending    *time.Timer
	pendingOp  fsnotify.Op
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// New creates a watcher for path. Call Start to begin delivering events.
func New(path string, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w := &Watcher{
		fsWatcher:  fsWatcher,
		path:       abs,
		dir:        filepath.Dir(abs),
		name:       filepath.Base(abs),
		delay:      DefaultDebounce,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		log:        logging.New("watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events returns the channel for receiving change events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start registers the watches and starts processing events.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}
	if err := w.fsWatcher.Add(w.path); err != nil {
		// The file may not exist yet; the directory watch covers creation.
		w.log.Warnf("failed to watch %s: %v", w.path, err)
	}

	w.log.Infof("Watching %s", w.path)
	go w.processEvents()
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.pending != nil {
			w.pending.Stop()
			w.pending = nil
		}
		w.debounceMu.Unlock()
	})
}

// Rearm re-adds any watch that was silently dropped, which happens when the
// file is deleted or replaced. Call it after every processed change.
func (w *Watcher) Rearm() {
	watched := w.fsWatcher.WatchList()

	if !slices.Contains(watched, w.dir) {
		if err := w.fsWatcher.Add(w.dir); err != nil {
			w.log.Warnf("failed to re-watch %s: %v", w.dir, err)
		} else {
			w.log.Debugf("re-armed directory watch %s", w.dir)
		}
	}
	if !slices.Contains(watched, w.path) {
		if err := w.fsWatcher.Add(w.path); err != nil {
			w.log.Debugf("failed to re-watch %s: %v", w.path, err)
		} else {
			w.log.Debugf("re-armed file watch %s", w.path)
		}
	}
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != w.name || filepath.Dir(filepath.Clean(event.Name)) != w.dir {
		return
	}
	// Atomic writes (write temp, rename over target) show up as Create or
	// Rename on the target rather than Write.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	w.log.Debugf("fsnotify: %s %s", event.Op, event.Name)
	w.debounce(event.Op)
}

// debounce restarts the timer so only the last event of a burst is delivered.
func (w *Watcher) debounce(op fsnotify.Op) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pendingOp |= op
	w.pending = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	w.debounceMu.Lock()
	op := w.pendingOp
	w.pending = nil
	w.pendingOp = 0
	w.debounceMu.Unlock()

	select {
	case w.eventsChan <- Event{Path: w.path, Op: op}:
	case <-w.done:
	default:
		// A change is already queued; the reader will re-read the file.
	}
}
