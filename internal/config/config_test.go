package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadFormats(t *testing.T) {
	cases := []struct {
		name string
		file string
		body string
	}{
		{"toml", "c.toml", "rig = \"campfire.yaml\"\nlog_level = \"debug\"\nhot_reload = true\n[window]\nwidth = 640\n"},
		{"yaml", "c.yaml", "rig: campfire.yaml\nlog_level: debug\nhot_reload: true\nwindow:\n  width: 640\n"},
		{"json", "c.json", `{"rig":"campfire.yaml","log_level":"debug","hot_reload":true,"window":{"width":640}}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := Load(writeTemp(t, c.file, c.body))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Rig != "campfire.yaml" || cfg.LogLevel != "debug" || !cfg.HotReload {
				t.Fatalf("unexpected config: %+v", cfg)
			}
			if cfg.Window.Width != 640 {
				t.Fatalf("width = %d, want 640", cfg.Window.Width)
			}
			if cfg.Window.Height != DefaultHeight {
				t.Fatalf("height default not applied: %d", cfg.Window.Height)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load(writeTemp(t, "c.ini", "x=1")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Rig != DefaultRig || cfg.Window.Width != DefaultWidth || cfg.LogLevel != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
