package tally

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tally-labs/tally/internal/domain"
)

// Config holds the configuration for the counter service.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Listen is the host or address to bind the HTTP listener on.
	Listen string

	// Port is the TCP port to bind. Port 0 picks a free port.
	Port int

	// StateDir is the directory holding the persisted counter record.
	// Empty derives ~/.tally.
	StateDir string

	// HTTPTimeout bounds reading and writing a single request.
	HTTPTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown on Stop.
	ShutdownTimeout time.Duration

	// WatchState enables reloading the counter when the record file
	// changes on disk outside the process.
	WatchState bool

	// WatchDebounce is the delay between a record file event and the
	// reload.
	WatchDebounce time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Listen:          "127.0.0.1",
		Port:            8080,
		HTTPTimeout:     15 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		WatchDebounce:   100 * time.Millisecond,
	}
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = def.HTTPTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = def.WatchDebounce
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
	}
	if c.StateDir == "" {
		return fmt.Errorf("%w: state dir is required", domain.ErrInvalidConfig)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Listen, strconv.Itoa(c.Port))
}

// DefaultStateDir returns ~/.tally, or a relative .tally directory if
// the user home cannot be determined.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".tally")
	}
	return ".tally"
}
