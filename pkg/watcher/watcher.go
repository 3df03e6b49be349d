// Package watcher notices external edits to the board file so a running
// session can fold them back in. Saves replace the file rather than
// rewriting it in place, so the parent directory is watched and events are
// matched against the file name.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mune-tada/corkboard/pkg/debug"
)

// DefaultPollInterval paces the stat loop when polling is in effect.
const DefaultPollInterval = 2 * time.Second

var (
	// ErrFileRemoved reports that the board file disappeared while watched.
	ErrFileRemoved = errors.New("board file removed")
	// ErrAlreadyStarted is returned by Start on a running watcher.
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithOnChange sets the callback fired once a quiet period follows a change.
func WithOnChange(fn func()) Option { return func(w *Watcher) { w.onChange = fn } }

// WithOnError sets the callback for watch failures and file removal.
func WithOnError(fn func(error)) Option { return func(w *Watcher) { w.onError = fn } }

// WithDebounce overrides the quiet period that coalesces change bursts.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithPollInterval overrides the stat cadence used when polling.
func WithPollInterval(d time.Duration) Option { return func(w *Watcher) { w.interval = d } }

// WithForcePoll skips fsnotify and goes straight to stat polling. The
// CB_FORCE_POLL environment variable has the same effect, for network
// mounts where inotify events never arrive.
func WithForcePoll() Option { return func(w *Watcher) { w.forcePoll = true } }

// Watcher follows one board file. fsnotify on the parent directory is the
// primary mechanism; mtime polling covers setups where that fails.
type Watcher struct {
	path      string
	debounce  time.Duration
	interval  time.Duration
	onChange  func()
	onError   func(error)
	forcePoll bool

	mu        sync.Mutex
	started   bool
	polling   bool
	done      chan struct{}
	notifier  *fsnotify.Watcher
	debouncer *Debouncer
	mtime     time.Time
	size      int64
}

// NewWatcher prepares a watcher for path. Nothing runs until Start.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounceDuration,
		interval: DefaultPollInterval,
		onChange: func() {},
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Path returns the absolute path under watch.
func (w *Watcher) Path() string { return w.path }

// Polling reports whether the stat loop is in effect instead of fsnotify.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Start begins delivering callbacks. The file may not exist yet; its
// creation then counts as the first change.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	w.mtime, w.size = time.Time{}, 0
	if info, err := os.Stat(w.path); err == nil {
		w.mtime = info.ModTime()
		w.size = info.Size()
	}

	w.done = make(chan struct{})
	w.polling = w.forcePoll || envBool("CB_FORCE_POLL")
	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			w.polling = true
		} else if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			fsw.Close()
			w.polling = true
		} else {
			w.notifier = fsw
			go w.runEvents(fsw, w.done)
		}
	}
	if w.polling {
		debug.Log("watching %s by polling every %s", w.path, w.interval)
		go w.runPoll(w.done)
	}

	w.started = true
	return nil
}

// Stop ends delivery. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	close(w.done)
	if w.notifier != nil {
		w.notifier.Close()
		w.notifier = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

func (w *Watcher) runEvents(fsw *fsnotify.Watcher, done chan struct{}) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&fsnotify.Remove != 0 {
				w.onError(ErrFileRemoved)
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.debouncer.Trigger(w.fire)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPoll(done chan struct{}) {
	tick := time.NewTicker(w.interval)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			w.pollOnce()
		}
	}
}

func (w *Watcher) pollOnce() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.mu.Lock()
		had := !w.mtime.IsZero()
		w.mtime, w.size = time.Time{}, 0
		w.mu.Unlock()
		if os.IsNotExist(err) {
			// Removal is only worth reporting once.
			if had {
				w.onError(ErrFileRemoved)
			}
			return
		}
		w.onError(err)
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.mtime) || info.Size() != w.size
	if changed {
		w.mtime = info.ModTime()
		w.size = info.Size()
	}
	w.mu.Unlock()
	if changed {
		w.debouncer.Trigger(w.fire)
	}
}

// fire runs on the debouncer's timer goroutine once the burst settles.
func (w *Watcher) fire() {
	w.mu.Lock()
	running := w.started
	w.mu.Unlock()
	if running {
		w.onChange()
	}
}

func envBool(name string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
