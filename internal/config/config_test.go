package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
	"github.com/HandsomeHarry/companion-cube/internal/schedule"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CheckIntervalSeconds != 60 {
		t.Fatalf("interval = %d, want 60", cfg.CheckIntervalSeconds)
	}
	if cfg.Mode != string(schedule.ModeCoach) {
		t.Fatalf("mode = %q, want coach", cfg.Mode)
	}
	if cfg.ActivityWatch.URL != "http://localhost:5600" {
		t.Fatalf("activitywatch url = %q", cfg.ActivityWatch.URL)
	}
	if cfg.Ollama.URL != "http://localhost:11434" {
		t.Fatalf("ollama url = %q", cfg.Ollama.URL)
	}
	if cfg.Server.Enabled {
		t.Fatalf("server should default to disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(*Config) {}, false},
		{"zero interval", func(c *Config) { c.CheckIntervalSeconds = 0 }, true},
		{"negative interval", func(c *Config) { c.CheckIntervalSeconds = -5 }, true},
		{"unknown mode", func(c *Config) { c.Mode = "party" }, true},
		{"ghost mode", func(c *Config) { c.Mode = "ghost" }, false},
		{"weekend mode", func(c *Config) { c.Mode = "weekend" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
check_interval_seconds: 120
mode: study_buddy
ollama:
  model: llama3
thresholds:
  focus_session_minutes: 20
cooldown_minutes:
  flow: 60
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := DefaultConfig()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.CheckIntervalSeconds != 120 {
		t.Fatalf("interval override lost: %d", cfg.CheckIntervalSeconds)
	}
	if cfg.Mode != "study_buddy" {
		t.Fatalf("mode override lost: %q", cfg.Mode)
	}
	if cfg.Ollama.Model != "llama3" {
		t.Fatalf("model override lost: %q", cfg.Ollama.Model)
	}
	// Untouched fields keep their defaults.
	if cfg.Ollama.URL != "http://localhost:11434" {
		t.Fatalf("unrelated field changed: %q", cfg.Ollama.URL)
	}
	if cfg.Thresholds.FocusSessionMinutes != 20 {
		t.Fatalf("threshold override lost: %v", cfg.Thresholds.FocusSessionMinutes)
	}
	if cfg.Cooldowns["flow"] != 60 {
		t.Fatalf("cooldown override lost: %v", cfg.Cooldowns["flow"])
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	if err := loadFromFile(cfg, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandTilde("~/data"); got != filepath.Join(home, "data") {
		t.Fatalf("expandTilde = %q", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path must pass through, got %q", got)
	}
	if got := expandTilde(""); got != "" {
		t.Fatalf("empty path must pass through, got %q", got)
	}
}

func TestConverters(t *testing.T) {
	cfg := DefaultConfig()

	th := cfg.ClassifyThresholds()
	if th != classify.DefaultThresholds() {
		t.Fatalf("default thresholds must round trip, got %+v", th)
	}

	cooldowns := cfg.ScheduleCooldowns()
	if got := cooldowns.For(classify.StateFlow); got != 45 {
		t.Fatalf("flow cooldown = %v, want 45", got)
	}
	if got := cooldowns.For(classify.StateAFK); got != 0 {
		t.Fatalf("afk cooldown = %v, want 0", got)
	}

	tax := cfg.Taxonomy()
	if !tax.App("vim").IsProductive() {
		t.Fatalf("default taxonomy must survive conversion")
	}
}

func TestOperatingMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "ghost"
	if cfg.OperatingMode() != schedule.ModeGhost {
		t.Fatalf("OperatingMode = %s", cfg.OperatingMode())
	}
}
