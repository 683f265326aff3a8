// Package watch reports changes to a page file on disk.
//
// Editors and generators often write a file several times in quick
// succession, so events are debounced: the handler runs once per file after
// writes have been quiet for the debounce window.
//
//	w, err := watch.New("static/wsb/page.json", logger)
//	if err != nil {
//	    return err
//	}
//	err = w.Run(ctx, func(ctx context.Context, ev watch.Event) {
//	    // re-check the page
//	})
package watch

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/kottinov/website-builder/pkg/errors"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 300 * time.Millisecond

// Op describes what happened to the watched file.
type Op string

const (
	OpWrite  Op = "write"
	OpCreate Op = "create"
	OpRemove Op = "remove"
)

// Event is one settled change.
type Event struct {
	Path string
	Op   Op
	At   time.Time
}

// Handler is called from the watcher goroutine for every settled change.
type Handler func(ctx context.Context, ev Event)

// Stats counts watcher activity.
type Stats struct {
	Events   int
	Reported int
	Errors   int
}

// Watcher watches a single page file.
type Watcher struct {
	path     string
	dir      string
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]Event
	stats   Stats

	// ready is closed once the directory is being watched.
	ready chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero reports every event on the next
// tick.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher for path. The file need not exist yet; its
// directory must.
func New(path string, logger *log.Logger, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve %s", path)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w := &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: DefaultDebounce,
		logger:   logger,
		pending:  make(map[string]Event),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Ready is closed once Run has started watching.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is done and returns nil on cancellation. It may be
// called once per Watcher. The
// directory is watched rather than the file so that editors which replace
// the file through a rename keep being seen.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "start file watcher")
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "watch %s", w.dir)
	}
	w.logger.Debug("watching page", "path", w.path, "debounce", w.debounce)
	close(w.ready)

	tick := w.debounce / 3
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.record(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			w.logger.Warn("watch error", "err", err)
		case now := <-ticker.C:
			for _, ev := range w.settled(now) {
				w.logger.Debug("page changed", "path", ev.Path, "op", ev.Op)
				fn(ctx, ev)
			}
		}
	}
}

func (w *Watcher) record(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	var op Op
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op = OpRemove
	case ev.Has(fsnotify.Create):
		op = OpCreate
	case ev.Has(fsnotify.Write):
		op = OpWrite
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	prev, ok := w.pending[w.path]
	// A create followed by writes is still a create.
	if ok && prev.Op == OpCreate && op == OpWrite {
		op = OpCreate
	}
	w.pending[w.path] = Event{Path: w.path, Op: op, At: time.Now()}
}

func (w *Watcher) settled(now time.Time) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Event
	for path, ev := range w.pending {
		if now.Sub(ev.At) >= w.debounce {
			out = append(out, ev)
			delete(w.pending, path)
		}
	}
	w.stats.Reported += len(out)
	return out
}
