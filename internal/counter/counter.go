package counter

import (
	"context"
	"sync"
	"time"

	"github.com/tally-labs/tally/pkg/log"
	"github.com/tally-labs/tally/pkg/store"
)

// Counter owns the authoritative counter value. All access (read,
// mutate, persist) happens under a single mutex so concurrent requests
// cannot lose updates. The persisted record is written before any
// mutation is acknowledged.
type Counter struct {
	mu     sync.Mutex
	value  int64
	store  store.Store
	logger log.Logger
}

// New creates a Counter backed by the given store. The value is zero
// until Load is called.
func New(s store.Store, logger log.Logger) *Counter {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Counter{store: s, logger: logger}
}

// Load initializes the counter from the persisted record. A missing,
// unreadable, or malformed record is not an error: the counter starts
// from zero and the failure is only visible at debug level.
func (c *Counter) Load(ctx context.Context) {
	rec, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Debug("persisted record unusable, starting from zero",
			log.String("path", c.store.Path()),
			log.Err(err),
		)
		rec = store.Record{}
	}

	c.mu.Lock()
	c.value = rec.Value
	c.mu.Unlock()
}

// Value returns the current counter value.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Increment adds one to the counter and persists the new value.
// The mutation is rolled back if the save fails.
func (c *Counter) Increment(ctx context.Context) (int64, error) {
	return c.add(ctx, 1)
}

// Decrement subtracts one from the counter and persists the new value.
// There is no floor; the counter may go negative.
func (c *Counter) Decrement(ctx context.Context) (int64, error) {
	return c.add(ctx, -1)
}

func (c *Counter) add(ctx context.Context, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.value + delta
	if err := c.save(ctx, next); err != nil {
		return c.value, err
	}
	c.value = next
	return next, nil
}

// Checkpoint persists the current value without changing it. The
// service calls this on non-mutating requests so every request leaves
// a fresh record behind.
func (c *Counter) Checkpoint(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.save(ctx, c.value); err != nil {
		return c.value, err
	}
	return c.value, nil
}

// Reload replaces the in-memory value with whatever the store holds.
// Used by the state watcher when the record changes on disk outside
// the process. An unreadable record leaves the value untouched.
func (c *Counter) Reload(ctx context.Context) error {
	rec, err := c.store.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	old := c.value
	c.value = rec.Value
	c.mu.Unlock()

	if old != rec.Value {
		c.logger.Info("counter reloaded from disk",
			log.Int64("old", old),
			log.Int64("new", rec.Value),
		)
	}
	return nil
}

func (c *Counter) save(ctx context.Context, value int64) error {
	return c.store.Save(ctx, store.Record{
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
}
