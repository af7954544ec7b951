// Package watcher monitors the input file and publishes debounced
// change events for the render loop.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/vimshot/internal/log"
	"github.com/zjrosen/vimshot/internal/pubsub"
)

// Watcher monitors one source file and publishes an event through the
// pubsub broker after its contents settle. The event payload is the
// watched path.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	broker    *pubsub.Broker[string]
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Path        string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		DebounceDur: 250 * time.Millisecond,
	}
}

// New creates a watcher for the configured file.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      cfg.Path,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[string](),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching and returns the event stream. Write and rename
// bursts coalesce into a single ChangedEvent after the debounce period;
// re-creation of the file publishes CreatedEvent; removal publishes
// RemovedEvent immediately. The subscription ends when ctx is cancelled
// or the watcher stops. Watching the parent directory instead of the file
// itself survives editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) (<-chan pubsub.Event[string], error) {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	events := w.broker.Subscribe(ctx)
	go w.loop()

	return events, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	w.broker.Close()
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer       *time.Timer
		pending     bool
		pendingType pubsub.EventType
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isSameFile(event) {
				continue
			}

			if event.Op.Has(fsnotify.Remove) {
				log.Warn(log.CatWatcher, "watched file removed", "path", w.path)
				w.broker.Publish(pubsub.RemovedEvent, w.path)
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			// Creates count as well: editors commonly replace the file on
			// save, and a removed file may come back. A Create followed by
			// Writes in one burst stays a CreatedEvent.
			if event.Op.Has(fsnotify.Create) {
				pendingType = pubsub.CreatedEvent
			} else if !pending {
				pendingType = pubsub.ChangedEvent
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired.
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				w.broker.Publish(pendingType, w.path)
				pending = false
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Keep watching; callers can wrap the watcher if they need
			// error visibility.

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isSameFile reports whether the event concerns the watched file.
func (w *Watcher) isSameFile(event fsnotify.Event) bool {
	return filepath.Base(event.Name) == filepath.Base(w.path)
}
