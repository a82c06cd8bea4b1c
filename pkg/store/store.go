package store

import (
	"context"
	"time"
)

// Record is the persisted form of the counter.
type Record struct {
	Value     int64     `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists and loads the counter record.
type Store interface {
	// Load retrieves the last saved record. A missing record is not an
	// error; implementations return a zero Record and nil.
	Load(ctx context.Context) (Record, error)

	// Save persists the record durably. Save must not return until the
	// record is on stable storage.
	Save(ctx context.Context, rec Record) error

	// Path returns a human-readable location of the record, for logging.
	Path() string
}
