package counter

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/tally-labs/tally/pkg/log"
	"github.com/tally-labs/tally/pkg/store"
)

// failStore wraps a Store and fails Save on demand.
type failStore struct {
	store.Store
	failSave bool
}

func (f *failStore) Save(ctx context.Context, rec store.Record) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, rec)
}

func newTestCounter(t *testing.T) (*Counter, *store.FileStore) {
	t.Helper()
	fs := store.NewFileStore(t.TempDir())
	return New(fs, log.NewNoopLogger()), fs
}

func TestCounterNetSum(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCounter(t)
	c.Load(ctx)

	for i := 0; i < 5; i++ {
		if _, err := c.Increment(ctx); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := c.Decrement(ctx); err != nil {
			t.Fatalf("Decrement: %v", err)
		}
	}

	if got := c.Value(); got != 3 {
		t.Errorf("Value = %d, want 3", got)
	}
}

func TestCounterGoesNegative(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCounter(t)
	c.Load(ctx)

	if v, err := c.Decrement(ctx); err != nil || v != -1 {
		t.Errorf("Decrement = (%d, %v), want (-1, nil)", v, err)
	}
}

func TestCounterLoadFromRecord(t *testing.T) {
	ctx := context.Background()
	fs := store.NewFileStore(t.TempDir())
	if err := fs.Save(ctx, store.Record{Value: 5}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	c := New(fs, log.NewNoopLogger())
	c.Load(ctx)
	if got := c.Value(); got != 5 {
		t.Errorf("Value = %d, want 5", got)
	}
}

func TestCounterLoadMalformedStartsFromZero(t *testing.T) {
	ctx := context.Background()
	fs := store.NewFileStore(t.TempDir())
	if err := fs.Save(ctx, store.Record{Value: 9}); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	if err := os.WriteFile(fs.Path(), []byte("garbage"), 0o600); err != nil {
		t.Fatalf("corrupt record: %v", err)
	}

	c := New(fs, log.NewNoopLogger())
	c.Load(ctx)
	if got := c.Value(); got != 0 {
		t.Errorf("Value = %d, want 0 after malformed record", got)
	}
}

func TestCounterIncrementRollsBackOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	fs := &failStore{Store: store.NewFileStore(t.TempDir())}
	c := New(fs, log.NewNoopLogger())
	c.Load(ctx)

	fs.failSave = true
	if _, err := c.Increment(ctx); err == nil {
		t.Fatal("Increment with failing store returned nil error")
	}
	if got := c.Value(); got != 0 {
		t.Errorf("Value = %d, want 0 after failed save", got)
	}
}

func TestCounterCheckpointPersistsCurrentValue(t *testing.T) {
	ctx := context.Background()
	c, fs := newTestCounter(t)
	c.Load(ctx)

	if _, err := c.Increment(ctx); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if _, err := c.Checkpoint(ctx); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	rec, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load record: %v", err)
	}
	if rec.Value != 1 {
		t.Errorf("persisted value = %d, want 1", rec.Value)
	}
}

func TestCounterReload(t *testing.T) {
	ctx := context.Background()
	c, fs := newTestCounter(t)
	c.Load(ctx)

	// External edit of the record.
	if err := fs.Save(ctx, store.Record{Value: 100}); err != nil {
		t.Fatalf("external save: %v", err)
	}
	if err := c.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := c.Value(); got != 100 {
		t.Errorf("Value = %d, want 100 after reload", got)
	}
}

func TestCounterConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCounter(t)
	c.Load(ctx)

	const workers = 8
	const each = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				if _, err := c.Increment(ctx); err != nil {
					t.Errorf("Increment: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := c.Value(); got != workers*each {
		t.Errorf("Value = %d, want %d", got, workers*each)
	}
}
