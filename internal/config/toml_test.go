package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.LogFile != nil || cfg.Session.History != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[session]\nlog-file = \"/tmp/keys.txt\"\nhistory = false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.LogFile == nil || *cfg.Session.LogFile != "/tmp/keys.txt" {
		t.Fatalf("unexpected log file: %v", cfg.Session.LogFile)
	}
	if cfg.Session.History == nil || *cfg.Session.History {
		t.Fatalf("expected history disabled")
	}
	if cfg.Session.DBPath != nil {
		t.Fatalf("expected db path unset")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[session]\nchord = \"ctrl+q\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	if got := DefaultLogPath(); got != filepath.Join("/data", "keytally", "key_log.txt") {
		t.Fatalf("unexpected log path: %s", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join("/conf", "keytally", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
}
