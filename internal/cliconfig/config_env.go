package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (TALLY_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", os.Getenv("TALLY_LISTEN"), &cfg.Listen)
	s.setString("state-dir", os.Getenv("TALLY_STATE_DIR"), &cfg.StateDir)

	if err := s.setIntFromString("port", os.Getenv("TALLY_PORT"), &cfg.Port); err != nil {
		return err
	}

	if err := s.setDuration("timeout", os.Getenv("TALLY_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("TALLY_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("watch-debounce", os.Getenv("TALLY_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setBoolFromString("watch-state", os.Getenv("TALLY_WATCH_STATE"), &cfg.WatchState)

	return nil
}
