package tally

import (
	"github.com/tally-labs/tally/pkg/log"
	"github.com/tally-labs/tally/pkg/store"
)

// Option configures optional behavior of Tally.
type Option func(*options)

// options holds the optional configuration for a Tally instance.
type options struct {
	logger log.Logger
	store  store.Store
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore sets a custom counter store.
// If not provided, a file store rooted at Config.StateDir is used.
func WithStore(s store.Store) Option {
	return func(o *options) {
		o.store = s
	}
}
