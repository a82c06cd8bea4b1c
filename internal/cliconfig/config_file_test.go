package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfigFile(t, `
listen = "0.0.0.0"
port = 9090
state_dir = "/var/lib/tally"
http_timeout = "5s"
watch_state = true
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.Listen != "0.0.0.0" {
		t.Errorf("Listen = %v, want 0.0.0.0", fc.Listen)
	}
	if fc.Port != 9090 {
		t.Errorf("Port = %v, want 9090", fc.Port)
	}
	if fc.WatchState == nil || !*fc.WatchState {
		t.Error("WatchState not parsed as true")
	}
}

func TestLoadFileConfigInvalidTOML(t *testing.T) {
	path := writeConfigFile(t, `listen = [broken`)

	if _, err := LoadFileConfig(path); err == nil {
		t.Fatal("LoadFileConfig of invalid TOML returned nil error")
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultConfig()
	yes := true
	fc := FileConfig{
		Listen:      "0.0.0.0",
		Port:        9090,
		HTTPTimeout: "5s",
		WatchState:  &yes,
	}

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Listen != "0.0.0.0" || cfg.Port != 9090 {
		t.Errorf("config not applied: %+v", cfg)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if !cfg.WatchState {
		t.Error("WatchState not applied")
	}
}

func TestApplyFileConfigRespectsChangedFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 7777
	fc := FileConfig{Port: 9090}

	changed := map[string]bool{"port": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Port != 7777 {
		t.Errorf("Port = %v, flag value should win over file", cfg.Port)
	}
}

func TestApplyFileConfigBadDuration(t *testing.T) {
	cfg := DefaultConfig()
	fc := FileConfig{HTTPTimeout: "not-a-duration"}

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Fatal("ApplyFileConfig with bad duration returned nil error")
	}
}
