// Package config loads editor defaults from an optional TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	appDir     = "image-editor-mcp"
	configFile = "config.toml"
)

// Config is the full editor configuration.
type Config struct {
	LogLevel string  `toml:"log_level"`
	Brush    Brush   `toml:"brush"`
	Export   Export  `toml:"export"`
	History  History `toml:"history"`
	Store    Store   `toml:"store"`
}

// Brush holds default tool parameters for new strokes.
type Brush struct {
	Radius     float64 `toml:"radius"`
	Intensity  float64 `toml:"intensity"`
	Color      string  `toml:"color"`
	BlurKernel string  `toml:"blur_kernel"`
}

// Export holds default export search settings.
type Export struct {
	Format      string `toml:"format"`
	Quality     int    `toml:"quality"`
	TargetBytes int    `toml:"target_bytes"`
	MaxAttempts int    `toml:"max_attempts"`
	Grayscale   bool   `toml:"grayscale"`
}

// History bounds per-session undo history. Zero means unbounded.
type History struct {
	MaxEntries int `toml:"max_entries"`
}

// Store configures where the host persists image blobs.
type Store struct {
	Dir string `toml:"dir"`

	// Autosave writes every session to the store, keyed by session ID,
	// after each commit, undo and redo. Off means editor_save only.
	Autosave bool `toml:"autosave"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Brush: Brush{
			Radius:     20,
			Intensity:  8,
			Color:      "#FF0000",
			BlurKernel: "gaussian",
		},
		Export: Export{
			Format:      "jpeg",
			Quality:     92,
			TargetBytes: 500 * 1024,
			MaxAttempts: 5,
		},
		Store: Store{
			Dir: filepath.Join(dataDir(), appDir, "blobs"),
		},
	}
}

// Path returns the config file location: $IMAGE_MCP_CONFIG if set, otherwise
// $XDG_CONFIG_HOME/image-editor-mcp/config.toml with ~/.config as fallback.
func Path() string {
	if p := os.Getenv("IMAGE_MCP_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(homeDir(), ".config")), appDir, configFile)
}

// Load reads the config file at path over the defaults, applies environment
// overrides, and validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.Validate()
	return cfg, nil
}

// Write stores cfg at path as TOML, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("IMAGE_MCP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("IMAGE_MCP_STORE_DIR"); v != "" {
		c.Store.Dir = v
	}
	if v := os.Getenv("IMAGE_MCP_AUTOSAVE"); v != "" {
		c.Store.Autosave = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate pulls out-of-range values back to something usable. It never
// fails: a bad setting should not keep the editor from starting.
func (c *Config) Validate() {
	d := Default()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = d.LogLevel
	}

	if c.Brush.Radius < 1 {
		c.Brush.Radius = 1
	}
	if c.Brush.Intensity <= 0 {
		c.Brush.Intensity = d.Brush.Intensity
	}
	if c.Brush.Color == "" {
		c.Brush.Color = d.Brush.Color
	}
	if c.Brush.BlurKernel == "" {
		c.Brush.BlurKernel = d.Brush.BlurKernel
	}

	if c.Export.Format == "" {
		c.Export.Format = d.Export.Format
	}
	c.Export.Quality = min(max(c.Export.Quality, 1), 100)
	if c.Export.MaxAttempts < 1 {
		c.Export.MaxAttempts = 1
	}
	if c.Export.TargetBytes < 0 {
		c.Export.TargetBytes = 0
	}

	if c.History.MaxEntries < 0 {
		c.History.MaxEntries = 0
	}
	if c.Store.Dir == "" {
		c.Store.Dir = d.Store.Dir
	}
}

func xdgOrFallback(xdg, fallback string) string {
	if dir := os.Getenv(xdg); dir != "" {
		return dir
	}
	return fallback
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.TempDir()
}

func dataDir() string {
	return xdgOrFallback("XDG_DATA_HOME", filepath.Join(homeDir(), ".local", "share"))
}
