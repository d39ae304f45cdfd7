package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tgienger/erii/internal/config"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")
	for _, key := range []string{config.EnvDataDir, config.EnvBackend, config.EnvLogLevel, config.EnvUI} {
		t.Setenv(key, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := setupHome(t)

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q, expected sqlite", cfg.Storage.Backend)
	}
	if want := filepath.Join(home, ".local", "share", "erii"); cfg.Storage.DataDir != want {
		t.Errorf("DataDir = %q, expected %q", cfg.Storage.DataDir, want)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, expected warn/text", cfg.Log)
	}
	if cfg.UI.Mode != config.UIMenu {
		t.Errorf("UI.Mode = %q, expected %q", cfg.UI.Mode, config.UIMenu)
	}
}

func TestLoad_XDGDataHome(t *testing.T) {
	setupHome(t)
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(dataHome, "erii"); cfg.Storage.DataDir != want {
		t.Errorf("DataDir = %q, expected %q", cfg.Storage.DataDir, want)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := setupHome(t)
	projectDir := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "erii", "config.toml"), `
[storage]
backend = "text"
data-dir = "~/tasks"

[log]
level = "debug"
`)
	writeFile(t, filepath.Join(projectDir, config.ProjectFile), `
[log]
level = "error"

[ui]
mode = "tui"
`)

	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Backend != "text" {
		t.Errorf("Backend = %q, expected text from global file", cfg.Storage.Backend)
	}
	if want := filepath.Join(home, "tasks"); cfg.Storage.DataDir != want {
		t.Errorf("DataDir = %q, expected %q", cfg.Storage.DataDir, want)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, expected project value error", cfg.Log.Level)
	}
	if cfg.UI.Mode != config.UITUI {
		t.Errorf("UI.Mode = %q, expected tui", cfg.UI.Mode)
	}
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	setupHome(t)
	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, config.ProjectFile), `
[storage]
backend = "text"
`)
	t.Setenv(config.EnvBackend, "SQLite")
	t.Setenv(config.EnvDataDir, "/tmp/erii-env")
	t.Setenv(config.EnvLogLevel, "info")
	t.Setenv(config.EnvUI, "tui")

	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q, expected sqlite", cfg.Storage.Backend)
	}
	if cfg.Storage.DataDir != "/tmp/erii-env" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.UI.Mode != config.UITUI {
		t.Errorf("UI.Mode = %q", cfg.UI.Mode)
	}
}

func TestOverride(t *testing.T) {
	setupHome(t)
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := cfg.Override(config.Overrides{Backend: "text", DataDir: "/data"}); err != nil {
		t.Fatalf("Override: %v", err)
	}
	if cfg.Storage.Backend != "text" || cfg.Storage.DataDir != "/data" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("empty override changed Log.Level to %q", cfg.Log.Level)
	}

	if err := cfg.Override(config.Overrides{LogLevel: "loud"}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("Override(loud) error = %v, expected ErrInvalid", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad backend", "[storage]\nbackend = \"postgres\"\n"},
		{"bad ui mode", "[ui]\nmode = \"web\"\n"},
		{"bad log format", "[log]\nformat = \"xml\"\n"},
		{"unknown key", "[storage]\nbucket = \"x\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t)
			projectDir := t.TempDir()
			writeFile(t, filepath.Join(projectDir, config.ProjectFile), tt.content)

			if _, err := config.Load(projectDir); !errors.Is(err, config.ErrInvalid) {
				t.Errorf("Load error = %v, expected ErrInvalid", err)
			}
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	setupHome(t)
	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, config.ProjectFile), "[storage\n")

	if _, err := config.Load(projectDir); err == nil {
		t.Error("expected parse error")
	}
}
