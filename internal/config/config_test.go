package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("IMAGE_MCP_LOG_LEVEL", "")
	t.Setenv("IMAGE_MCP_STORE_DIR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	d := Default()
	if cfg.Brush != d.Brush || cfg.Export != d.Export || cfg.LogLevel != d.LogLevel {
		t.Errorf("got %+v, want defaults %+v", cfg, d)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("IMAGE_MCP_LOG_LEVEL", "")
	t.Setenv("IMAGE_MCP_STORE_DIR", "")
	t.Setenv("IMAGE_MCP_AUTOSAVE", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
log_level = "debug"

[brush]
radius = 8
color = "#00FF00"
blur_kernel = "box"

[export]
format = "webp"
quality = 250
max_attempts = 0
target_bytes = 1024

[history]
max_entries = 50

[store]
autosave = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %s", cfg.LogLevel)
	}
	if cfg.Brush.Radius != 8 || cfg.Brush.Color != "#00FF00" || cfg.Brush.BlurKernel != "box" {
		t.Errorf("Brush: got %+v", cfg.Brush)
	}
	// Unset keys keep their defaults
	if cfg.Brush.Intensity != Default().Brush.Intensity {
		t.Errorf("Brush.Intensity: got %v, want default", cfg.Brush.Intensity)
	}
	if cfg.Export.Format != "webp" || cfg.Export.TargetBytes != 1024 {
		t.Errorf("Export: got %+v", cfg.Export)
	}
	// Out-of-range values are pulled back, not rejected
	if cfg.Export.Quality != 100 {
		t.Errorf("Export.Quality: got %d, want 100", cfg.Export.Quality)
	}
	if cfg.Export.MaxAttempts != 1 {
		t.Errorf("Export.MaxAttempts: got %d, want 1", cfg.Export.MaxAttempts)
	}
	if cfg.History.MaxEntries != 50 {
		t.Errorf("History.MaxEntries: got %d", cfg.History.MaxEntries)
	}
	if !cfg.Store.Autosave {
		t.Error("Store.Autosave: got false, want true")
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[brush\nradius = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IMAGE_MCP_LOG_LEVEL", "WARN")
	t.Setenv("IMAGE_MCP_STORE_DIR", dir)
	t.Setenv("IMAGE_MCP_AUTOSAVE", "true")

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %s, want warn", cfg.LogLevel)
	}
	if cfg.Store.Dir != dir {
		t.Errorf("Store.Dir: got %s, want %s", cfg.Store.Dir, dir)
	}
	if !cfg.Store.Autosave {
		t.Error("IMAGE_MCP_AUTOSAVE=true should enable autosave")
	}
}

func TestPath(t *testing.T) {
	t.Setenv("IMAGE_MCP_CONFIG", "/tmp/custom.toml")
	if got := Path(); got != "/tmp/custom.toml" {
		t.Errorf("Path with IMAGE_MCP_CONFIG: got %s", got)
	}

	t.Setenv("IMAGE_MCP_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got, want := Path(), filepath.Join("/xdg", "image-editor-mcp", "config.toml"); got != want {
		t.Errorf("Path with XDG_CONFIG_HOME: got %s, want %s", got, want)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		LogLevel: "verbose",
		Brush:    Brush{Radius: -3},
		Export:   Export{Quality: -10, TargetBytes: -1},
		History:  History{MaxEntries: -2},
	}
	cfg.Validate()

	d := Default()
	if cfg.LogLevel != d.LogLevel {
		t.Errorf("LogLevel: got %s", cfg.LogLevel)
	}
	if cfg.Brush.Radius != 1 {
		t.Errorf("Brush.Radius: got %v, want 1", cfg.Brush.Radius)
	}
	if cfg.Brush.Color != d.Brush.Color || cfg.Brush.BlurKernel != d.Brush.BlurKernel {
		t.Errorf("Brush: got %+v", cfg.Brush)
	}
	if cfg.Export.Quality != 1 || cfg.Export.TargetBytes != 0 || cfg.Export.Format != d.Export.Format {
		t.Errorf("Export: got %+v", cfg.Export)
	}
	if cfg.History.MaxEntries != 0 {
		t.Errorf("History.MaxEntries: got %d", cfg.History.MaxEntries)
	}
	if cfg.Store.Dir == "" {
		t.Error("Store.Dir should default")
	}
}

func TestWriteThenLoad(t *testing.T) {
	t.Setenv("IMAGE_MCP_LOG_LEVEL", "")
	t.Setenv("IMAGE_MCP_STORE_DIR", "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Brush.Radius = 33
	want.Export.Grayscale = true

	if err := Write(path, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Brush.Radius != 33 || !got.Export.Grayscale {
		t.Errorf("got %+v", got)
	}
}
