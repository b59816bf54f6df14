package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `version: 1
timeout: 10m
kill_grace: 2s
drain_timeout: 500ms
max_output: 4096
actions_dir: /opt/agentd/actions
spool_dir: /var/spool/agentd
cache_size: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Timeout() != 10*time.Minute {
		t.Errorf("Timeout() = %s, want 10m", cfg.Timeout())
	}
	if cfg.KillGrace() != 2*time.Second {
		t.Errorf("KillGrace() = %s, want 2s", cfg.KillGrace())
	}
	if cfg.DrainTimeout() != 500*time.Millisecond {
		t.Errorf("DrainTimeout() = %s, want 500ms", cfg.DrainTimeout())
	}
	if cfg.MaxOutputBytes() != 4096 {
		t.Errorf("MaxOutputBytes() = %d, want 4096", cfg.MaxOutputBytes())
	}
	if cfg.ActionsPath() != "/opt/agentd/actions" {
		t.Errorf("ActionsPath() = %q", cfg.ActionsPath())
	}
	if cfg.SpoolDir != "/var/spool/agentd" {
		t.Errorf("SpoolDir = %q", cfg.SpoolDir)
	}
	if cfg.CacheSize() != 3 {
		t.Errorf("CacheSize() = %d, want 3", cfg.CacheSize())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 0 {
		t.Errorf("expected default config, got Version = %d", cfg.Version)
	}
	if cfg.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %s, want %s", cfg.Timeout(), DefaultTimeout)
	}
	if cfg.MaxOutputBytes() != DefaultMaxOutput {
		t.Errorf("MaxOutputBytes() = %d, want %d", cfg.MaxOutputBytes(), DefaultMaxOutput)
	}
	if cfg.ActionsPath() != DefaultActionsDir {
		t.Errorf("ActionsPath() = %q, want %q", cfg.ActionsPath(), DefaultActionsDir)
	}
	if cfg.CacheSize() != DefaultCacheSize {
		t.Errorf("CacheSize() = %d, want %d", cfg.CacheSize(), DefaultCacheSize)
	}
}

func TestLoad_TimeoutNone(t *testing.T) {
	cfg, err := Load(writeConfig(t, "timeout: none\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout() != 0 {
		t.Errorf("Timeout() = %s, want 0", cfg.Timeout())
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "kill_grace: soon\n"))
	if err == nil {
		t.Fatal("expected error for invalid kill_grace")
	}
	if !strings.Contains(err.Error(), "kill_grace") {
		t.Errorf("error = %q, want to mention kill_grace", err)
	}
}

func TestLoad_NegativeMaxOutput(t *testing.T) {
	if _, err := Load(writeConfig(t, "max_output: -1\n")); err == nil {
		t.Fatal("expected error for negative max_output")
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeConfig(t, "timeout: [unclosed\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing") {
		t.Errorf("error = %q, want 'parsing'", err)
	}
}

func TestZeroDurationsFallBack(t *testing.T) {
	cfg := &Config{RawTimeout: "0s", RawKillGrace: "-1s"}
	if cfg.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %s, want default", cfg.Timeout())
	}
	if cfg.KillGrace() != DefaultKillGrace {
		t.Errorf("KillGrace() = %s, want default", cfg.KillGrace())
	}
}
