// Package watcher detects writes to the shared database by other clients.
//
// SQLite in WAL mode means an external writer touches either the database
// file or its -wal sidecar. The watcher monitors both through fsnotify,
// debounces the burst of events a single transaction produces, and
// publishes one DBChanged notification through its broker. The UI treats
// that notification as "refetch and reconcile": the fetched values reach
// the field editors as external updates.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/log"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/pubsub"
)

// EventType distinguishes change notifications from watcher failures.
type EventType string

const (
	DBChanged    EventType = "db_changed"
	WatcherError EventType = "watcher_error"
)

// WatcherEvent is the broker payload.
type WatcherEvent struct {
	Type  EventType
	Error error
}

// Config controls what is watched and how aggressively events coalesce.
type Config struct {
	DBPath      string
	DebounceDur time.Duration
}

// DefaultConfig returns the standard debounce for the given database path.
func DefaultConfig(dbPath string) Config {
	return Config{DBPath: dbPath, DebounceDur: 100 * time.Millisecond}
}

// Watcher owns the fsnotify loop. Create with New, then Start; Stop is
// idempotent and safe before Start.
type Watcher struct {
	cfg    Config
	broker *pubsub.Broker[WatcherEvent]

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	done    chan struct{}
	stopped bool
}

// New validates the config and creates the watcher. The broker exists from
// this point so callers can subscribe before Start.
func New(cfg Config) (*Watcher, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("watcher: empty database path")
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultConfig(cfg.DBPath).DebounceDur
	}
	return &Watcher{
		cfg:    cfg,
		broker: pubsub.NewBroker[WatcherEvent](),
	}, nil
}

// Broker returns the event broker. Non-nil from New on.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] { return w.broker }

// Start begins watching the database directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return errors.New("watcher: already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	// Watch the directory, not the file: SQLite replaces/creates the -wal
	// sidecar, and watches on replaced files go stale.
	if err := fsw.Add(filepath.Dir(w.cfg.DBPath)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.cfg.DBPath), err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop(fsw, w.done)

	log.Debug(log.CatWatcher, "watcher started", "path", w.cfg.DBPath, "debounce", w.cfg.DebounceDur)
	return nil
}

// Stop shuts down the loop and closes all broker subscriptions.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true

	var err error
	if w.fsw != nil {
		err = w.fsw.Close()
		<-w.done
		w.fsw = nil
	}
	w.broker.Shutdown()
	return err
}

func (w *Watcher) loop(fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case evt, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(evt.Name) {
				continue
			}
			// Restart the debounce window on every relevant write.
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.cfg.DebounceDur)
			timerCh = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// Errors publish immediately, not debounced.
			log.Error(log.CatWatcher, "fsnotify error", "error", err)
			w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{Type: WatcherError, Error: err})

		case <-timerCh:
			timerCh = nil
			log.Debug(log.CatWatcher, "database changed")
			w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{Type: DBChanged})
		}
	}
}

// relevant reports whether the changed path is the database or a sidecar.
func (w *Watcher) relevant(name string) bool {
	switch name {
	case w.cfg.DBPath, w.cfg.DBPath + "-wal", w.cfg.DBPath + "-shm", w.cfg.DBPath + "-journal":
		return true
	}
	return false
}
