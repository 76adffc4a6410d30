// Package watcher reloads the records file when it changes on disk. Editors
// and config-management tools typically replace the file atomically, so the
// parent directory is watched and events are filtered down to the records
// file itself.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cluster-tools/impactviz/pkg/logging"
)

// ReloadEvent signals that the records file changed and settled.
type ReloadEvent struct {
	Path      string
	Timestamp time.Time
}

// RecordsWatcher watches a single records file for changes, debouncing
// rapid write bursts into one event per settle period.
type RecordsWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	quietPeriod time.Duration
	events      chan ReloadEvent
}

// New creates a watcher for the records file at path.
func New(path string) (*RecordsWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolving records path: %w", err)
	}

	return &RecordsWatcher{
		watcher:     fsw,
		path:        abs,
		quietPeriod: 200 * time.Millisecond,
		events:      make(chan ReloadEvent, 8),
	}, nil
}

// Start begins watching. The watcher shuts down when ctx is canceled.
func (w *RecordsWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	logging.Info("watching records file", "path", w.path)
	go w.run(ctx)
	return nil
}

// Events returns the channel of debounced reload events.
func (w *RecordsWatcher) Events() <-chan ReloadEvent {
	return w.events
}

func (w *RecordsWatcher) run(ctx context.Context) {
	var timer *time.Timer
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			close(w.events)
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				close(w.events)
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("records file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.quietPeriod)
			} else {
				timer.Reset(w.quietPeriod)
			}

		case <-timerC():
			timer = nil
			w.events <- ReloadEvent{Path: w.path, Timestamp: time.Now()}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				close(w.events)
				return
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}
