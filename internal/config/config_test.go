package config

import (
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvOptions, "")
	t.Setenv(EnvDataDir, "/tmp/reeldate-test")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %q, want %q", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.DBPath() != filepath.Join("/tmp/reeldate-test", DBFilename) {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if cfg.OptionsPath() != filepath.Join("/tmp/reeldate-test", OptionsFilename) {
		t.Errorf("OptionsPath() = %q", cfg.OptionsPath())
	}
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvOptions, "/etc/reeldate.yaml")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9000 {
		t.Errorf("Port() = %d, want 9000", cfg.Port())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %q, want debug", cfg.LogLevel())
	}
	if cfg.OptionsPath() != "/etc/reeldate.yaml" {
		t.Errorf("OptionsPath() = %q", cfg.OptionsPath())
	}
}

func TestNew_InvalidPort(t *testing.T) {
	for _, p := range []string{"abc", "0", "70000"} {
		t.Setenv(EnvPort, p)
		if _, err := New(); err == nil {
			t.Errorf("New() with %s=%q should fail", EnvPort, p)
		}
	}
}
