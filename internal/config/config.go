package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultRig    = "knight.yaml"
)

// Window sizes the viewer window.
type Window struct {
	Width  int    `json:"width" yaml:"width" toml:"width"`
	Height int    `json:"height" yaml:"height" toml:"height"`
	Title  string `json:"title" yaml:"title" toml:"title"`
}

// Config holds runtime parameters for the viewer and fxctl.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Window    Window `json:"window" yaml:"window" toml:"window"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	Rig       string `json:"rig" yaml:"rig" toml:"rig"`
	HotReload bool   `json:"hot_reload" yaml:"hot_reload" toml:"hot_reload"`
	Seed      uint64 `json:"seed" yaml:"seed" toml:"seed"`
}

// Default returns a config with every field populated.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Window.Width <= 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height <= 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Window.Title == "" {
		c.Window.Title = "fxrelay"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Rig == "" {
		c.Rig = DefaultRig
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("config: empty path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("config: unsupported extension %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads path when set, otherwise returns Default.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
