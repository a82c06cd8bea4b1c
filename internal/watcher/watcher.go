// Package watcher reloads the counter when its persisted record
// changes on disk outside the process, e.g. an operator edit or a
// restore from backup. The service's own saves also trigger events;
// those reloads are no-ops because disk and memory already agree.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tally-labs/tally/pkg/log"
)

// DefaultDebounce is the delay between a file event and the reload.
// Editors and atomic renames fire several events per change; the
// debounce collapses them into one reload.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors one file in a directory and invokes reload after
// each (debounced) change.
type Watcher struct {
	dir      string
	file     string
	debounce time.Duration
	reload   func(context.Context) error
	logger   log.Logger

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher for the named file inside dir. reload is called
// from the watcher goroutine after each debounced change.
func New(dir, file string, debounce time.Duration, reload func(context.Context) error, logger log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		dir:      dir,
		file:     file,
		debounce: debounce,
		reload:   reload,
		logger:   logger,
	}
}

// Start begins watching. It returns once the underlying watcher is
// registered; events are handled on a background goroutine until Stop
// or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: atomic saves replace the file
	// by rename, which would drop a direct file watch.
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(watchCtx, fw)

	w.logger.Info("state watcher started",
		log.String("path", filepath.Join(w.dir, w.file)),
	)
	return nil
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("state watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.reload(ctx); err != nil {
			w.logger.Error("state reload failed", log.Err(err))
		}
	})
}
