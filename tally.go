// Package tally provides a durable single-counter HTTP service that can
// be embedded in other applications.
//
// Example usage:
//
//	cfg := tally.DefaultConfig()
//	cfg.StateDir = "/var/lib/tally"
//	srv, err := tally.New(cfg, tally.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop()
package tally

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/tally-labs/tally/internal/counter"
	"github.com/tally-labs/tally/internal/domain"
	"github.com/tally-labs/tally/internal/server"
	"github.com/tally-labs/tally/internal/watcher"
	"github.com/tally-labs/tally/pkg/lifecycle"
	"github.com/tally-labs/tally/pkg/log"
	"github.com/tally-labs/tally/pkg/store"
)

// Sentinel errors re-exported for callers of the public API.
var (
	ErrAlreadyRunning = domain.ErrAlreadyRunning
	ErrNotRunning     = domain.ErrNotRunning
	ErrInvalidConfig  = domain.ErrInvalidConfig
)

// RecordFileName is the name of the persisted counter record inside
// Config.StateDir.
const RecordFileName = "counter.json"

// Tally is the counter service. Use New() to create an instance, then
// Start() to bind the listener and begin serving.
type Tally struct {
	config    Config
	logger    log.Logger
	store     store.Store
	counter   *counter.Counter
	lifecycle *lifecycle.Manager
	watcher   *watcher.Watcher

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// New creates a new Tally instance with the given configuration.
// The instance is created in StateStopped; call Start() to begin serving.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Tally, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	st := o.store
	if st == nil {
		st = store.NewFileStore(cfg.StateDir)
	}

	t := &Tally{
		config:    cfg,
		logger:    o.logger,
		store:     st,
		counter:   counter.New(st, o.logger),
		lifecycle: lifecycle.NewManager(o.logger),
	}

	if cfg.WatchState {
		t.watcher = watcher.New(cfg.StateDir, RecordFileName, cfg.WatchDebounce, t.counter.Reload, o.logger)
	}

	return t, nil
}

// Start loads the persisted counter, binds the HTTP listener and begins
// serving. It returns once the service is accepting requests.
func (t *Tally) Start(ctx context.Context) error {
	if !t.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := t.lifecycle.TransitionTo(lifecycle.StateStarting, "start requested"); err != nil {
		return err
	}

	t.counter.Load(ctx)
	t.logger.Info("counter loaded",
		log.Int64("value", t.counter.Value()),
		log.String("path", t.store.Path()),
	)

	ln, err := net.Listen("tcp", t.config.Addr())
	if err != nil {
		_ = t.lifecycle.TransitionTo(lifecycle.StateCrashed, "listen failed")
		return fmt.Errorf("listen on %s: %w", t.config.Addr(), err)
	}

	srv := &http.Server{
		Handler:      server.NewHandler(t.counter, t.logger),
		ReadTimeout:  t.config.HTTPTimeout,
		WriteTimeout: t.config.HTTPTimeout,
	}

	t.mu.Lock()
	t.srv = srv
	t.ln = ln
	t.mu.Unlock()

	t.lifecycle.AddWorker()
	go func() {
		defer t.lifecycle.WorkerDone()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("serve failed", log.Err(err))
			_ = t.lifecycle.TransitionTo(lifecycle.StateCrashed, "serve failed")
		}
	}()

	if t.watcher != nil {
		if err := t.watcher.Start(ctx); err != nil {
			// The service works without the watcher; don't fail startup.
			t.logger.Warn("state watcher unavailable", log.Err(err))
			t.watcher = nil
		}
	}

	if err := t.lifecycle.TransitionTo(lifecycle.StateRunning, "listener bound"); err != nil {
		return err
	}

	t.logger.Info("serving", log.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts the service down: in-flight requests finish,
// the listener is released, and background workers drain, all bounded
// by Config.ShutdownTimeout.
func (t *Tally) Stop() error {
	if !t.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := t.lifecycle.TransitionTo(lifecycle.StateStopping, "stop requested"); err != nil {
		return err
	}

	if t.watcher != nil {
		t.watcher.Stop()
	}

	t.mu.Lock()
	srv := t.srv
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.config.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			_ = t.lifecycle.TransitionTo(lifecycle.StateCrashed, "shutdown failed")
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	if err := t.lifecycle.WaitWithTimeout(t.config.ShutdownTimeout); err != nil {
		_ = t.lifecycle.TransitionTo(lifecycle.StateCrashed, "workers did not drain")
		return domain.ErrShutdownTimeout
	}

	return t.lifecycle.TransitionTo(lifecycle.StateStopped, "shutdown complete")
}

// Status returns the current lifecycle state.
func (t *Tally) Status() lifecycle.State {
	return t.lifecycle.State()
}

// Addr returns the bound listener address, or the configured address if
// the service has not started. Useful with Port 0.
func (t *Tally) Addr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ln != nil {
		return t.ln.Addr().String()
	}
	return t.config.Addr()
}

// Value returns the current counter value.
func (t *Tally) Value() int64 {
	return t.counter.Value()
}
